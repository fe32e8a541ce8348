package internal

var installCmd = taskCmd("install", "Install the build output",
	`Install stages the build output into the install path through DESTDIR.`)

func init() {
	rootCmd.AddCommand(installCmd)
}
