package internal

import (
	"github.com/goplus/mtask/internal/task"
	"github.com/spf13/cobra"
)

var infoTopic string

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print the project paths",
	Long:  `Info prints the source, build and install paths derived for this checkout.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runner.Info(infoTopic)
	},
}

func init() {
	infoCmd.Flags().StringVarP(&infoTopic, "topic", "t", task.TopicAll, "One of all, build_path, install_path")
	rootCmd.AddCommand(infoCmd)
}
