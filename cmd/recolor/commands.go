package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	recolor "github.com/goliatone/go-recolor"
	"github.com/goliatone/go-recolor/pkg/state"
)

func newRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "recolor",
		Short:         "Manage vertex-paint palettes stored next to a mesh",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "recolor.toml", "path to the TOML config file")
	flags.StringVar(&a.statePath, "state", ".recolor", "state directory, or a .db file for SQLite")
	flags.StringVar(&a.actor, "actor", "", "actor id attached to activity events")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&a.overrides.AttributeName, "attribute", "", "assignment attribute name")
	flags.StringVar(&a.policy, "policy", "", "removed slot policy: unassign|keep|nearest")
	flags.StringVar(&a.overrides.Evaluator, "evaluator", "", "derive expression engine: expr|cel|js")

	root.AddCommand(
		newShowCommand(a),
		newListCommand(a),
		newBasisCommand(a),
		newAddPaletteCommand(a),
		newActivateCommand(a),
		newRemovePaletteCommand(a),
		newRenameCommand(a),
		newAddColorCommand(a),
		newRemoveColorCommand(a),
		newSetColorCommand(a),
		newLabelCommand(a),
		newDeriveCommand(a),
	)
	return root
}

func newShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show MESH",
		Short: "Print the palettes stored for a mesh",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := meshID(args[0])
			doc, meta, err := a.load(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printDocument(cmd.OutOrStdout(), id, doc, meta)
		},
	}
}

func newListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List meshes with stored palettes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			meshes, err := a.meshes(cmd.Context())
			if err != nil {
				return err
			}
			for _, mesh := range meshes {
				fmt.Fprintln(cmd.OutOrStdout(), mesh)
			}
			return nil
		},
	}
}

func newBasisCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "basis MESH",
		Short: "Rebuild the basis palette from the painted colors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var report recolor.BasisReport
			doc, _, err := a.edit(cmd.Context(), args[0], func(e *recolor.Editor) error {
				report = e.RebuildBasisFromPaint(cmd.Context())
				return nil
			})
			if err != nil {
				return err
			}
			if report.Skipped {
				fmt.Fprintln(cmd.OutOrStdout(), "basis unchanged: activate the basis palette on a painted mesh first")
				return nil
			}
			slots := 0
			if len(doc.Palettes) > 0 {
				slots = len(doc.Palettes[recolor.BasisIndex].Colors)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "basis: %d slots (+%d, -%d) over %d elements\n",
				slots, report.Added, report.Pruned, report.Elements)
			return nil
		},
	}
}

func newAddPaletteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add-palette MESH [NAME]",
		Short: "Append a copy of the basis palette",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) > 1 {
				name = args[1]
			}
			var index int
			_, _, err := a.edit(cmd.Context(), args[0], func(e *recolor.Editor) error {
				index = e.AddPalette(cmd.Context(), name)
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "palette %d added\n", index)
			return nil
		},
	}
}

func newActivateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "activate MESH INDEX",
		Short: "Activate a palette and repaint the mesh",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex("palette index", args[1])
			if err != nil {
				return err
			}
			doc, _, err := a.edit(cmd.Context(), args[0], func(e *recolor.Editor) error {
				if !e.SetActivePalette(cmd.Context(), index) {
					return fmt.Errorf("mesh %s has no palettes", meshID(args[0]))
				}
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "palette %d active\n", doc.ActivePaletteIndex)
			return nil
		},
	}
}

func newRemovePaletteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-palette MESH [INDEX]",
		Short: "Remove a recolor palette, the active one by default",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index := recolor.Unset
			if len(args) > 1 {
				parsed, err := parseIndex("palette index", args[1])
				if err != nil {
					return err
				}
				index = parsed
			}
			_, _, err := a.edit(cmd.Context(), args[0], func(e *recolor.Editor) error {
				if index == recolor.Unset {
					index = e.Store().Active()
				}
				if !e.RemovePaletteAt(cmd.Context(), index) {
					return fmt.Errorf("palette %d cannot be removed", index)
				}
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "palette %d removed\n", index)
			return nil
		},
	}
}

func newRenameCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename MESH INDEX NAME",
		Short: "Rename a recolor palette",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex("palette index", args[1])
			if err != nil {
				return err
			}
			_, _, err = a.edit(cmd.Context(), args[0], func(e *recolor.Editor) error {
				if !e.RenamePalette(cmd.Context(), index, args[2]) {
					return fmt.Errorf("palette %d cannot be renamed", index)
				}
				return nil
			})
			return err
		},
	}
}

func newAddColorCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add-color MESH COLOR",
		Short: "Append a slot to every palette",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := recolor.ToColor(args[1])
			if err != nil {
				return err
			}
			var slot int
			_, _, err = a.edit(cmd.Context(), args[0], func(e *recolor.Editor) error {
				slot = e.AddColor(cmd.Context(), c)
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "slot %d added\n", slot)
			return nil
		},
	}
}

func newRemoveColorCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-color MESH SLOT",
		Short: "Remove a slot from every palette",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			slot, err := parseIndex("slot", args[1])
			if err != nil {
				return err
			}
			_, _, err = a.edit(cmd.Context(), args[0], func(e *recolor.Editor) error {
				if !e.RemoveColor(cmd.Context(), slot) {
					return fmt.Errorf("slot %d does not exist", slot)
				}
				return nil
			})
			return err
		},
	}
}

func newSetColorCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set-color MESH PALETTE SLOT COLOR",
		Short: "Change one slot color of one palette",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			palette, err := parseIndex("palette index", args[1])
			if err != nil {
				return err
			}
			slot, err := parseIndex("slot", args[2])
			if err != nil {
				return err
			}
			c, err := recolor.ToColor(args[3])
			if err != nil {
				return err
			}
			_, _, err = a.edit(cmd.Context(), args[0], func(e *recolor.Editor) error {
				if !e.EditColor(cmd.Context(), palette, slot, c) {
					return fmt.Errorf("palette %d has no slot %d", palette, slot)
				}
				return nil
			})
			return err
		},
	}
}

func newLabelCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "label MESH SLOT TEXT",
		Short: "Label a slot",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			slot, err := parseIndex("slot", args[1])
			if err != nil {
				return err
			}
			_, _, err = a.edit(cmd.Context(), args[0], func(e *recolor.Editor) error {
				if !e.EditLabel(cmd.Context(), slot, args[2]) {
					return fmt.Errorf("slot %d does not exist", slot)
				}
				return nil
			})
			return err
		},
	}
}

func newDeriveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "derive MESH NAME EXPRESSION",
		Short: "Append a palette computed from the basis by an expression",
		Long: `Evaluates EXPRESSION once per basis slot. The bindings r, g, b, h, s, v,
hex, color, index and label describe the slot; rgb, hsv, mix, shift_hue and
to_hex are available as functions.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var index int
			_, _, err := a.edit(cmd.Context(), args[0], func(e *recolor.Editor) error {
				var err error
				index, err = e.DerivePalette(cmd.Context(), args[1], args[2])
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "palette %d derived\n", index)
			return nil
		},
	}
}

func parseIndex(what, value string) (int, error) {
	index, err := strconv.Atoi(value)
	if err != nil || index < 0 {
		return 0, fmt.Errorf("invalid %s %q", what, value)
	}
	return index, nil
}

func printDocument(w io.Writer, id string, doc recolor.Document, meta state.Meta) error {
	fmt.Fprintf(w, "mesh: %s\n", id)
	if meta.SnapshotID != "" {
		fmt.Fprintf(w, "snapshot: %s (%s)\n", meta.SnapshotID, meta.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	if len(doc.Palettes) == 0 {
		fmt.Fprintln(w, "no palettes")
		return nil
	}
	fmt.Fprintf(w, "active: %d (%s)\n", doc.ActivePaletteIndex, activeName(doc))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	header := []string{"SLOT", "LABEL"}
	for _, p := range doc.Palettes {
		header = append(header, p.Name)
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for slot := range doc.Palettes[recolor.BasisIndex].Colors {
		label := ""
		if slot < len(doc.Labels) {
			label = doc.Labels[slot]
		}
		row := []string{strconv.Itoa(slot), label}
		for _, p := range doc.Palettes {
			c := p.Colors[slot]
			row = append(row, recolor.RGB(c[0], c[1], c[2]).Hex())
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func activeName(doc recolor.Document) string {
	if doc.ActivePaletteIndex < 0 || doc.ActivePaletteIndex >= len(doc.Palettes) {
		return "none"
	}
	return doc.Palettes[doc.ActivePaletteIndex].Name
}
