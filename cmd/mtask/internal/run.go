package internal

var runCmd = taskCmd("run", "Run the installed binary",
	`Run starts the installed executable from <install path>/bin.`)

func init() {
	rootCmd.AddCommand(runCmd)
}
