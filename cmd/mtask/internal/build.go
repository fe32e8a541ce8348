package internal

var buildCmd = taskCmd("build", "Build the project",
	`Build compiles the project, configuring the build tree first when it is missing.`)

func init() {
	rootCmd.AddCommand(buildCmd)
}
