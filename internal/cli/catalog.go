package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/storeshots/pkg/catalog"
)

// catalogCommand lists the built-in layouts, devices, sizes and presets.
func (c *CLI) catalogCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List layouts, devices, export sizes and gradients",
	}
	cmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")

	cmd.AddCommand(&cobra.Command{
		Use:   "layouts",
		Short: "List layouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ls := catalog.Layouts()
			if asJSON {
				return printJSON(ls)
			}
			rows := make([][]string, len(ls))
			for i, l := range ls {
				kind := fmt.Sprintf("%d phone", l.PhoneCount)
				if l.PhoneCount > 1 {
					kind += "s"
				}
				if l.Paired {
					kind = "paired " + string(l.Variant)
				}
				rows[i] = []string{l.ID, l.Name, kind, l.Description}
			}
			fmt.Println(renderTable([]string{"ID", "Name", "Kind", "Description"}, rows, -1))
			return nil
		},
	})

	var platform string
	devices := &cobra.Command{
		Use:   "devices",
		Short: "List device frames",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ds := catalog.Devices()
			if platform != "" {
				ds = catalog.DevicesByPlatform(catalog.Platform(strings.ToLower(platform)))
			}
			if asJSON {
				return printJSON(ds)
			}
			rows := make([][]string, len(ds))
			for i, d := range ds {
				rows[i] = []string{d.ID, d.Name, string(d.Platform), fmt.Sprintf("%.0f×%.0f", d.Width, d.Height)}
			}
			fmt.Println(renderTable([]string{"ID", "Name", "Platform", "Frame"}, rows, -1))
			return nil
		},
	}
	devices.Flags().StringVar(&platform, "platform", "", "filter by platform: ios, android")
	cmd.AddCommand(devices)

	var store string
	sizes := &cobra.Command{
		Use:   "sizes",
		Short: "List export sizes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ss := catalog.Sizes()
			if store != "" {
				ss = catalog.SizesByStore(catalog.Store(strings.ToLower(store)))
			}
			if asJSON {
				return printJSON(ss)
			}
			rows := make([][]string, len(ss))
			for i, s := range ss {
				rows[i] = []string{s.ID, s.Name, fmt.Sprintf("%d×%d", s.Width, s.Height), s.Description}
			}
			fmt.Println(renderTable([]string{"ID", "Name", "Pixels", "Description"}, rows, -1))
			return nil
		},
	}
	sizes.Flags().StringVar(&store, "store", "", "filter by store: app-store, play-store")
	cmd.AddCommand(sizes)

	cmd.AddCommand(&cobra.Command{
		Use:   "gradients",
		Short: "List gradient and solid color presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gs, solids := catalog.Gradients(), catalog.SolidColors()
			if asJSON {
				return printJSON(map[string]any{"gradients": gs, "solids": solids})
			}
			rows := make([][]string, 0, len(gs)+len(solids))
			for _, g := range gs {
				rows = append(rows, []string{g.ID, g.Name, "gradient", fmt.Sprintf("%s @ %.0f°", strings.Join(g.Colors, " "), g.Angle)})
			}
			for _, s := range solids {
				rows = append(rows, []string{s.ID, s.Name, "solid", s.Color})
			}
			fmt.Println(renderTable([]string{"ID", "Name", "Kind", "Colors"}, rows, -1))
			return nil
		},
	})

	return cmd
}
