package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ariavision/svnwatch/internal/wc"
)

var rootsCmd = &cobra.Command{
	Use:   "roots [root]",
	Short: "List the Subversion working copies under a directory tree",
	Long: `Discover and list working copy roots. A directory is a root when it
holds a .svn directory and no ancestor inside the tree does; nested
externals checked out inside another working copy count as their own
roots.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fatalf("%v", err)
		}
		if len(args) == 1 {
			cfg.Root = args[0]
			cfg.Normalize()
		}
		if cfg.Root == "" {
			fatalf("no root; pass one or run `svnwatch init`")
		}
		all, _ := cmd.Flags().GetBool("all")

		roots, err := wc.FindRoots(cfg.Root)
		if err != nil {
			fatalf("%v", err)
		}
		if len(roots) == 0 {
			fmt.Printf("No working copies under %s\n", cfg.Root)
			return
		}

		fmt.Printf("%d working copies under %s:\n", len(roots), cfg.Root)
		shown := roots
		if !all && len(roots) > 10 {
			shown = roots[:10]
		}
		for _, root := range shown {
			fmt.Printf("  %s\n", root)
		}
		if rest := len(roots) - len(shown); rest > 0 {
			fmt.Printf("  ... and %d more (use --all)\n", rest)
		}
	},
}

func init() {
	rootsCmd.Flags().String("root", "", "directory tree to scan")
	rootsCmd.Flags().Bool("all", false, "list every root, not just the first 10")

	rootCmd.AddCommand(rootsCmd)
}
