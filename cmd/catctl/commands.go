package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"goldshop/domain"
	"goldshop/internal/categorytree"
	"goldshop/internal/inventory"
	"goldshop/pkg/config"
)

const parentRoot = "root"

// inventoryService is the inventory client as catctl uses it.
type inventoryService interface {
	categorytree.Service
	Category(ctx context.Context, id string) (domain.CategoryNode, error)
}

type options struct {
	EnvFile string
	Verbose bool

	connect func(cfg *config.AppConfig) inventoryService
	svc     inventoryService
	cfg     *config.AppConfig
}

func newOptions() *options {
	return &options{connect: connectInventory}
}

func connectInventory(cfg *config.AppConfig) inventoryService {
	return inventory.NewClient(cfg.InventoryURL, cfg.InventoryTimeout, inventory.Credentials{
		UserID:    cfg.ServiceUserID,
		UserEmail: cfg.ServiceUserEmail,
		Token:     cfg.ServiceToken,
	})
}

func newRootCommand(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "catctl",
		Short:         "Manage the gold shop category tree.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&o.EnvFile, "env-file", ".env",
		"Environment file loaded before the configuration is read.")
	cmd.PersistentFlags().BoolVarP(&o.Verbose, "verbose", "v", false,
		"Log requests to stderr.")

	addTree(cmd, o)
	addShow(cmd, o)
	addBulkUpdate(cmd, o)
	addBulkMove(cmd, o)
	addBulkDelete(cmd, o)
	addMove(cmd, o)

	return cmd
}

func (o *options) setup() error {
	if err := godotenv.Load(o.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", o.EnvFile, err)
	}

	logger := zap.NewNop()
	if o.Verbose {
		zapConfig := zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		logger, _ = zapConfig.Build()
	}
	zap.ReplaceGlobals(logger)

	o.cfg = config.Read()
	if o.svc == nil {
		o.svc = o.connect(o.cfg)
	}
	return nil
}

func (o *options) tree(ctx context.Context) ([]domain.CategoryNode, *domain.Tree, error) {
	forest, err := o.svc.Tree(ctx)
	if err != nil {
		return nil, nil, err
	}
	return forest, domain.NewTree(forest), nil
}

// dispatch validates op against a fresh tree and sends it.
func (o *options) dispatch(ctx context.Context, ids []string, op categorytree.Operation) error {
	_, tree, err := o.tree(ctx)
	if err != nil {
		return err
	}
	return categorytree.NewDispatcher(o.svc).Dispatch(ctx, tree, ids, op)
}

func addTree(topLevel *cobra.Command, o *options) {
	var depth int

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the category tree.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			forest, tree, err := o.tree(cmd.Context())
			if err != nil {
				return err
			}
			if depth <= 0 {
				depth = o.cfg.TreeMaxDepth
			}

			renderer := categorytree.NewRenderer(1, depth)
			rows := renderer.Rows(forest, categorytree.NewIDSet(tree.IDs()...), categorytree.NewIDSet(), "")
			printTree(cmd.OutOrStdout(), rows)
			return nil
		},
	}
	cmd.Flags().IntVar(&depth, "depth", 0, "Deepest level to print. Defaults to TREE_MAX_DEPTH.")

	topLevel.AddCommand(cmd)
}

func addShow(topLevel *cobra.Command, o *options) {
	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Print one category.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			node, err := o.svc.Category(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printCategory(cmd.OutOrStdout(), node)
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}

func addBulkUpdate(topLevel *cobra.Command, o *options) {
	var (
		active bool
		color  string
		icon   string
		parent string
	)

	cmd := &cobra.Command{
		Use:   "bulk-update ID...",
		Short: "Change fields on several categories at once.",
		Example: `
catctl bulk-update 0d1c... 5e7a... --active=false
catctl bulk-update 0d1c... --color "#d4af37" --parent root
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var fields categorytree.FieldChanges
			flags := cmd.Flags()
			if flags.Changed("active") {
				fields.IsActive = &active
			}
			if flags.Changed("color") {
				fields.Color = &color
			}
			if flags.Changed("icon") {
				fields.Icon = &icon
			}
			if flags.Changed("parent") {
				fields.Parent = &categorytree.ParentChange{ID: parentID(parent)}
			}

			if err := o.dispatch(cmd.Context(), args, categorytree.BulkUpdate{Fields: fields}); err != nil {
				return err
			}
			printDone(cmd.OutOrStdout(), "Updated", len(args))
			return nil
		},
	}
	cmd.Flags().BoolVar(&active, "active", true, "Set the active flag.")
	cmd.Flags().StringVar(&color, "color", "", "Set the colour, as #rrggbb.")
	cmd.Flags().StringVar(&icon, "icon", "", "Set the icon.")
	cmd.Flags().StringVar(&parent, "parent", "", `Set the parent id, or "root".`)

	topLevel.AddCommand(cmd)
}

func addBulkMove(topLevel *cobra.Command, o *options) {
	var parent string

	cmd := &cobra.Command{
		Use:   "bulk-move ID... --parent ID|root",
		Short: "Move several categories under one parent.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			op := categorytree.BulkMove{ParentID: parentID(parent)}
			if err := o.dispatch(cmd.Context(), args, op); err != nil {
				return err
			}
			printDone(cmd.OutOrStdout(), "Moved", len(args))
			return nil
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", `New parent id, or "root".`)
	_ = cmd.MarkFlagRequired("parent")

	topLevel.AddCommand(cmd)
}

func addBulkDelete(topLevel *cobra.Command, o *options) {
	var force bool

	cmd := &cobra.Command{
		Use:   "bulk-delete ID...",
		Short: "Delete several categories.",
		Long: "Delete several categories. Categories that still hold products are only\n" +
			"deleted with --force; their products are detached and their children move\n" +
			"to the top level.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.dispatch(cmd.Context(), args, categorytree.BulkDelete{Force: force}); err != nil {
				return err
			}
			printDone(cmd.OutOrStdout(), "Deleted", len(args))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Delete categories that still hold products.")

	topLevel.AddCommand(cmd)
}

func addMove(topLevel *cobra.Command, o *options) {
	var (
		target   string
		position string
	)

	cmd := &cobra.Command{
		Use:   "move ID --target ID --position before|after|inside",
		Short: "Move one category next to or into another.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := categorytree.ParsePosition(strings.ToLower(position))
			if err != nil {
				return err
			}
			_, tree, err := o.tree(cmd.Context())
			if err != nil {
				return err
			}
			req, err := categorytree.ComputeMove(tree, args[0], target, pos)
			if err != nil {
				return err
			}
			if err := o.svc.Reorder(cmd.Context(), req); err != nil {
				return err
			}
			printDone(cmd.OutOrStdout(), "Moved", 1)
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "Category to drop next to or into.")
	cmd.Flags().StringVar(&position, "position", string(categorytree.PositionInside), "before, after or inside.")
	_ = cmd.MarkFlagRequired("target")

	topLevel.AddCommand(cmd)
}

func parentID(flag string) string {
	if flag == parentRoot {
		return ""
	}
	return flag
}
