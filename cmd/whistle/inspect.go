package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vango-dev/whistle/internal/config"
	"github.com/vango-dev/whistle/pkg/vdom"
)

func inspectCmd(load func() (*config.Config, error)) *cobra.Command {
	var location string

	cmd := &cobra.Command{
		Use:   "inspect <page.html>",
		Short: "Print the join snapshot of each mount point",
		Long: `Parse an HTML page and print, for every mount point, the program,
its socket, its params and the tree literal that would be sent in the join.

Examples:
  whistle inspect page.html
  cat page.html | whistle inspect -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return inspectPage(cmd.OutOrStdout(), args[0], location, cfg.Socket.URL)
		},
	}

	cmd.Flags().StringVar(&location, "location", "/", "URI the page is located at")

	return cmd
}

func inspectPage(w io.Writer, pagePath, location, defaultSocket string) error {
	doc, err := loadPage(pagePath, location)
	if err != nil {
		return err
	}
	points, err := scanMountPoints(doc, defaultSocket)
	if err != nil {
		return err
	}

	for _, mp := range points {
		params, err := json.Marshal(mp.Params)
		if err != nil {
			return err
		}
		tree, err := json.Marshal(vdom.SerializeRoot(mp.Node))
		if err != nil {
			return err
		}
		socket := mp.Socket
		if socket == "" {
			socket = "(no socket)"
		}
		fmt.Fprintf(w, "%s %s\n", mp.Program, socket)
		fmt.Fprintf(w, "  params: %s\n", params)
		fmt.Fprintf(w, "  dom:    %s\n", tree)
	}
	return nil
}
