package internal

var configCmd = taskCmd("config", "Configure the build tree",
	`Config runs the CMake generator into the build path and copies
compile_commands.json to the source root.`)

func init() {
	rootCmd.AddCommand(configCmd)
}
