package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/hospital-api/internal/domain/entity"
	"github.com/jhoicas/hospital-api/pkg/config"
	"github.com/jhoicas/hospital-api/pkg/jwt"
)

// tokenCmd emite un token firmado con JWT_SECRET, para entornos sin el proveedor de identidad.
func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Genera un JWT de prueba para un usuario y rol",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, _ := cmd.Flags().GetString("user")
			role, _ := cmd.Flags().GetString("role")
			if userID == "" {
				return fmt.Errorf("--user es requerido")
			}
			if !entity.IsValidRole(role) {
				return fmt.Errorf("rol desconocido %q", role)
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			tok, err := jwt.Generate(cfg.JWT.Secret, userID, role, cfg.JWT.Issuer, cfg.JWT.Expiration)
			if err != nil {
				return err
			}
			fmt.Println(tok)
			return nil
		},
	}
	cmd.Flags().String("user", "", "ID del usuario")
	cmd.Flags().String("role", entity.RoleApoteker, "Rol (admin, dokter, perawat, apoteker, laboratorium, resepsionis)")
	return cmd
}
