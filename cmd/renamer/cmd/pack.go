package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/solatis/renamer/internal/core/packfile"
	"github.com/solatis/renamer/internal/rules"
	"github.com/solatis/renamer/internal/types"
)

var packCmd = &cobra.Command{
	Use:   "pack",
	Short: "Manage rule packs",
}

var packImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import rule packs from a YAML file into the database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		b, err := requireStore()
		if err != nil {
			return err
		}
		defer b.Close()

		reg, err := packfile.Load(args[0], types.DefaultClassifier{})
		if err != nil {
			return err
		}
		if err := b.store.SaveRegistry(ctx, reg); err != nil {
			return err
		}
		logger.WithField("packs", reg.Names()).Info("imported rule packs")
		return nil
	},
}

var packExportCmd = &cobra.Command{
	Use:   "export FILE",
	Short: "Export every rule pack in the database to a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		b, err := requireStore()
		if err != nil {
			return err
		}
		defer b.Close()

		reg, err := b.store.LoadPacks(ctx, types.DefaultClassifier{})
		if err != nil {
			return err
		}
		if err := packfile.Save(args[0], reg); err != nil {
			return err
		}
		logger.WithField("packs", reg.Names()).Info("exported rule packs")
		return nil
	},
}

var packDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a rule pack from the database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := requireStore()
		if err != nil {
			return err
		}
		defer b.Close()

		ok, err := b.store.DeletePack(context.Background(), args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s", types.ErrUnknownPack, args[0])
		}
		return nil
	},
}

var packListCmd = &cobra.Command{
	Use:   "list",
	Short: "List rule packs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		b, err := openBackend()
		if err != nil {
			return err
		}
		defer b.Close()

		reg, err := loadRegistry(context.Background(), cfg, b)
		if err != nil {
			return err
		}
		for _, name := range reg.Names() {
			p, _ := reg.Get(name)
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d rules\n", name, len(p.Records()))
		}
		return nil
	},
}

var (
	resolvePack   string
	resolveType   int
	resolveDamage int
)

var packResolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Show the effective rule for an item",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		b, err := openBackend()
		if err != nil {
			return err
		}
		defer b.Close()

		reg, err := loadRegistry(context.Background(), cfg, b)
		if err != nil {
			return err
		}
		pack := resolvePack
		if pack == "" {
			pack = cfg.Renamer.DefaultPack
		}
		item := &types.Item{TypeID: resolveType, Damage: resolveDamage, Amount: 1}
		res, err := rules.NewResolver(reg).ResolveTier(pack, item)
		if err != nil {
			return err
		}

		out := struct {
			Pack string          `json:"pack"`
			Tier string          `json:"tier"`
			Rule *rules.Document `json:"rule"`
		}{Pack: pack, Tier: res.Tier.String()}
		if res.Rule != nil {
			doc := res.Rule.Document()
			out.Rule = &doc
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	rootCmd.AddCommand(packCmd)
	packCmd.AddCommand(packImportCmd, packExportCmd, packDeleteCmd, packListCmd, packResolveCmd)

	for _, c := range []*cobra.Command{packListCmd, packResolveCmd} {
		c.Flags().String("packs-file", "", "YAML pack file used when no database is configured")
	}
	packResolveCmd.Flags().StringVar(&resolvePack, "pack", "", "pack name (defaults to renamer.default_pack)")
	packResolveCmd.Flags().IntVar(&resolveType, "type", 0, "item type id")
	packResolveCmd.Flags().IntVar(&resolveDamage, "damage", 0, "item damage value")
	packResolveCmd.MarkFlagRequired("type")
}

// requireStore opens the backend and fails when no database is configured.
func requireStore() (*backend, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("--db-url required")
	}
	return openBackend()
}
