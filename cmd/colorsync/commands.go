package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/ukaji3/colorsync-go/pkg/colorsync"
	"github.com/ukaji3/colorsync-go/pkg/colorsync/exchange"
	"github.com/ukaji3/colorsync-go/pkg/colorsync/models"
	"github.com/ukaji3/colorsync-go/pkg/colorsync/watch"
	"github.com/ukaji3/colorsync-go/pkg/colorsync/worksheet"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create or migrate the record store schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			cols, err := st.Columns(cmd.Context(), "color_measurements")
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]any{"path": st.Path(), "columns": cols})
		},
	}
}

func newSetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sets",
		Short: "List sample sets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			sets, err := st.ListSampleSets(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, sets)
		},
	}

	var description string
	add := &cobra.Command{
		Use:   "add IMAGE",
		Short: "Create a sample set, or return the existing set for IMAGE",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			id, err := st.CreateSampleSet(cmd.Context(), args[0], description)
			if err != nil {
				return err
			}
			set, err := st.GetSampleSet(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd, set)
		},
	}
	add.Flags().StringVar(&description, "description", "", "Set description")

	cleanup := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove duplicate measurement rows left by older databases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			n, err := st.CleanupDuplicates(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]int64{"removed": n})
		},
	}

	cmd.AddCommand(add, cleanup)
	return cmd
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info DOCUMENT",
		Short: "List the sheets of an exchange document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := exchange.SheetNames(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, models.DocumentInfo{BookName: filepath.Base(args[0]), Sheets: names})
		},
	}
}

func newTemplateCmd() *cobra.Command {
	var sampleSet, sheet string
	cmd := &cobra.Command{
		Use:   "template DOCUMENT",
		Short: "Write an empty Plot_3D exchange document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if sheet == "" {
				sheet = current.cfg.Exchange.Sheet
			}
			if err := exchange.CreateTemplate(args[0], sheet, exchange.DefaultMetadata(sampleSet)); err != nil {
				return err
			}
			current.logger.Info("template written", "path", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&sampleSet, "sample-set", "", "Sample set name for the metadata block")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Sheet name (default: Plot3D_Data)")
	return cmd
}

func newSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save SNAPSHOT",
		Short: "Save the analysis attributes of a worksheet snapshot to the store",
		Long:  "Save reads a worksheet snapshot (JSON, \"-\" for stdin) and writes each row's analysis attributes to the store.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := readSession(cmd, args[0])
			if err != nil {
				return err
			}
			c, err := coordinator(cmd.Context())
			if err != nil {
				return err
			}
			res, err := c.SaveSession(cmd.Context(), s)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
}

func newRefreshCmd() *cobra.Command {
	var snapshot, out string
	cmd := &cobra.Command{
		Use:   "refresh SET_ID",
		Short: "Merge stored records of a sample set into a worksheet snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			setID, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := readSession(cmd, snapshot)
			if err != nil {
				return err
			}
			c, err := coordinator(cmd.Context())
			if err != nil {
				return err
			}
			res, err := c.Refresh(cmd.Context(), s, setID)
			if err != nil {
				return err
			}
			current.logger.Info("refreshed", "set_id", res.SetID, "updated", res.Updated, "inserted", res.Inserted)
			return writeSession(cmd, s, out)
		},
	}
	cmd.Flags().StringVar(&snapshot, "snapshot", "", "Worksheet snapshot to merge into (default: empty worksheet)")
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output snapshot path (default: stdout)")
	return cmd
}

func newImportCmd() *cobra.Command {
	var snapshot, out, sheet string
	var remap, save bool
	cmd := &cobra.Command{
		Use:   "import DOCUMENT",
		Short: "Merge an exchange document into a worksheet snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := readSession(cmd, snapshot)
			if err != nil {
				return err
			}
			c, err := coordinator(cmd.Context())
			if err != nil {
				return err
			}
			res, err := importDocument(cmd.Context(), c, s, args[0], sheetOrDefault(sheet), remap || current.cfg.Exchange.Remap, save)
			if err != nil {
				return err
			}
			if out == "" && !save {
				return writeSession(cmd, s, out)
			}
			if out != "" {
				if err := writeSession(cmd, s, out); err != nil {
					return err
				}
			}
			return printJSON(cmd, res)
		},
	}
	cmd.Flags().StringVar(&snapshot, "snapshot", "", "Worksheet snapshot to merge into (default: empty worksheet)")
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output snapshot path (default: stdout)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Sheet to read (default: first sheet)")
	cmd.Flags().BoolVar(&remap, "remap", false, "Place columns by header name when row 8 is out of order")
	cmd.Flags().BoolVar(&save, "save", false, "Save the imported rows to the store")
	return cmd
}

func newExportCmd() *cobra.Command {
	var snapshot, sheet, sampleSet string
	var setID int64
	var confirm bool
	cmd := &cobra.Command{
		Use:   "export DOCUMENT",
		Short: "Write a sample set or worksheet snapshot to an exchange document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (setID == 0) == (snapshot == "") {
				return fmt.Errorf("exactly one of --set or --snapshot is required")
			}
			c, err := coordinator(cmd.Context())
			if err != nil {
				return err
			}
			opts := colorsync.ExportOptions{
				Sheet:          sheetOrDefault(sheet),
				SampleSet:      sampleSet,
				ConfirmDiscard: confirm,
			}
			var res colorsync.ExportResult
			if setID != 0 {
				res, err = c.ExportSet(cmd.Context(), setID, args[0], opts)
			} else {
				var s *worksheet.Session
				if s, err = readSession(cmd, snapshot); err != nil {
					return err
				}
				res, err = c.Export(cmd.Context(), s.Rows(), args[0], opts)
			}
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	cmd.Flags().Int64Var(&setID, "set", 0, "Sample set to export from the store")
	cmd.Flags().StringVar(&snapshot, "snapshot", "", "Worksheet snapshot to export")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Target sheet (default: first sheet)")
	cmd.Flags().StringVar(&sampleSet, "sample-set", "", "Sample set name for new documents")
	cmd.Flags().BoolVar(&confirm, "confirm-discard", false, "Replace a sheet with an invalid header even if data is lost")
	return cmd
}

func newWatchCmd() *cobra.Command {
	var sheet string
	var remap bool
	debounce := watch.DefaultOptions().Debounce
	cmd := &cobra.Command{
		Use:   "watch DOCUMENT",
		Short: "Import and save an exchange document every time it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := coordinator(cmd.Context())
			if err != nil {
				return err
			}
			opts := watch.Options{Debounce: current.cfg.Watch.Debounce, Logger: current.logger}
			if cmd.Flags().Changed("debounce") {
				opts.Debounce = debounce
			}
			w, err := watch.New(args[0], opts)
			if err != nil {
				return err
			}
			current.logger.Info("watching document", "path", w.Path(), "debounce", opts.Debounce)
			return w.Run(cmd.Context(), func(ctx context.Context, path string) error {
				res, err := importDocument(ctx, c, worksheet.New(0), path, sheetOrDefault(sheet), remap || current.cfg.Exchange.Remap, true)
				if err != nil {
					return err
				}
				return printJSON(cmd, res)
			})
		},
	}
	cmd.Flags().StringVar(&sheet, "sheet", "", "Sheet to read (default: first sheet)")
	cmd.Flags().BoolVar(&remap, "remap", false, "Place columns by header name when row 8 is out of order")
	cmd.Flags().DurationVar(&debounce, "debounce", debounce, "Quiet period before a change is imported")
	return cmd
}

func newCentroidCmd() *cobra.Command {
	var x, y, z, radius float64
	var sphere, marker, color string
	cmd := &cobra.Command{
		Use:   "centroid CLUSTER",
		Short: "Store the centroid and sphere of a cluster in the CENTROIDS set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			optional := func(name string, v float64) *float64 {
				if !flags.Changed(name) {
					return nil
				}
				return &v
			}
			c := models.Centroid{
				ClusterID:    models.ClusterID(args[0]),
				X:            optional("x", x),
				Y:            optional("y", y),
				Z:            optional("z", z),
				SphereColor:  sphere,
				SphereRadius: optional("radius", radius),
				Marker:       marker,
				Color:        color,
			}
			point, err := st.UpsertCentroid(cmd.Context(), c)
			if err != nil {
				return err
			}
			id, _, _ := models.ParseClusterID(c.ClusterID)
			return printJSON(cmd, map[string]any{"cluster_id": id, "point_index": point})
		},
	}
	cmd.Flags().Float64Var(&x, "x", 0, "Centroid x coordinate")
	cmd.Flags().Float64Var(&y, "y", 0, "Centroid y coordinate")
	cmd.Flags().Float64Var(&z, "z", 0, "Centroid z coordinate")
	cmd.Flags().StringVar(&sphere, "sphere", "", "Sphere color")
	cmd.Flags().Float64Var(&radius, "radius", 0, "Sphere radius")
	cmd.Flags().StringVar(&marker, "marker", "", "Plot marker (default: .)")
	cmd.Flags().StringVar(&color, "color", "", "Plot color (default: blue)")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	var point int64
	cmd := &cobra.Command{
		Use:   "delete SET_ID",
		Short: "Delete a sample set, or one point of it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			setID, err := parseID(args[0])
			if err != nil {
				return err
			}
			st, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			var n int64
			if point > 0 {
				n, err = st.DeleteMeasurement(cmd.Context(), setID, point)
			} else {
				n, err = st.DeleteSampleSet(cmd.Context(), setID)
			}
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]int64{"deleted": n})
		},
	}
	cmd.Flags().Int64Var(&point, "point", 0, "Delete only this point index")
	return cmd
}

// syncResult is printed by import --save and by watch.
type syncResult struct {
	Import colorsync.ImportResult `json:"import"`
	Save   *colorsync.SaveResult  `json:"save,omitempty"`
}

func importDocument(ctx context.Context, c *colorsync.Coordinator, s *worksheet.Session, path, sheet string, remap, save bool) (syncResult, error) {
	var res syncResult
	ir, err := c.Import(ctx, s, path, sheet, colorsync.ImportOptions{Remap: remap})
	if err != nil {
		return res, err
	}
	res.Import = ir
	if save {
		sr, err := c.SaveSession(ctx, s)
		if err != nil {
			return res, err
		}
		res.Save = &sr
	}
	return res, nil
}

func sheetOrDefault(sheet string) string {
	if sheet != "" {
		return sheet
	}
	return current.cfg.Exchange.Sheet
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, models.NewValidationError("set_id", s, "must be a positive integer")
	}
	return id, nil
}

// readSession loads a snapshot from path, "-" for stdin. An empty path
// yields an empty session.
func readSession(cmd *cobra.Command, path string) (*worksheet.Session, error) {
	var r io.Reader
	switch path {
	case "":
		return worksheet.New(0), nil
	case "-":
		r = cmd.InOrStdin()
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	return worksheet.LoadSnapshot(r)
}

// writeSession writes s as a snapshot to path, or to stdout when empty.
func writeSession(cmd *cobra.Command, s *worksheet.Session, path string) error {
	if path == "" {
		return s.WriteSnapshot(cmd.OutOrStdout())
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := s.WriteSnapshot(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
