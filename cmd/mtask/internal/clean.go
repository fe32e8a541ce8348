package internal

var cleanCmd = taskCmd("clean", "Remove the build path",
	`Clean removes the build path. It refuses to run during the CppCon weeks.`)

var cleanAllCmd = taskCmd("clean_all", "Remove the build path and installed binaries",
	`Clean_all runs clean, then removes <install path>/bin.`)

func init() {
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(cleanAllCmd)
}
