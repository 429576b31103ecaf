package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/hospital-api/internal/application/usecase"
	"github.com/jhoicas/hospital-api/internal/domain"
	"github.com/jhoicas/hospital-api/internal/infrastructure/catalog"
	"github.com/jhoicas/hospital-api/internal/infrastructure/postgres"
	"github.com/jhoicas/hospital-api/pkg/config"
)

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Carga de datos iniciales",
	}

	drugs := &cobra.Command{
		Use:   "drugs [archivo.csv]",
		Short: "Carga el catálogo de medicamentos con su stock inicial",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			latin1, _ := cmd.Flags().GetBool("latin1")
			return seedDrugs(args[0], latin1)
		},
	}
	drugs.Flags().Bool("latin1", false, "El archivo viene en ISO-8859-1")
	cmd.AddCommand(drugs)
	return cmd
}

// seedDrugs es idempotente: los nombres ya registrados se omiten.
func seedDrugs(path string, latin1 bool) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("abrir catálogo: %w", err)
	}
	defer f.Close()

	rows, err := catalog.ParseDrugs(f, catalog.Options{Latin1: latin1})
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()

	uc := usecase.NewDrugUseCase(postgres.NewDrugRepository(pool), postgres.NewStockMovementRepository(pool))
	var created, skipped int
	for _, row := range rows {
		if _, err := uc.Create(ctx, row); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				skipped++
				continue
			}
			return fmt.Errorf("%s: %w", row.Name, err)
		}
		created++
	}
	log.Info().Int("created", created).Int("skipped", skipped).Str("file", path).Msg("catálogo cargado")
	return nil
}
