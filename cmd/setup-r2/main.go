package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"rifas-storefront/internal/config"
	"rifas-storefront/internal/services"

	"github.com/rs/zerolog/log"
)

// Checks the payment-proof archive configuration. With "verify" it also
// writes, looks up and removes a test object in the storage the server
// would use: the R2 bucket when configured, local disk otherwise.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := config.NewLogger(cfg.Log)
	factory := services.NewStorageFactory(cfg, logger)
	verify := len(os.Args) > 1 && os.Args[1] == "verify"

	info := factory.StorageInfo()
	fmt.Printf("Storage Information:\n")
	fmt.Printf("  R2 Configured: %v\n", info["r2_configured"])
	fmt.Printf("  Bucket Name: %s\n", info["bucket_name"])
	fmt.Printf("  Public URL: %s\n", info["public_url"])
	fmt.Printf("  Fallback Path: %s\n", info["fallback_path"])

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := factory.ValidateR2Configuration(); err != nil {
		fmt.Printf("\nR2 configuration is incomplete: %v\n", err)
		fmt.Println("Payment proofs will be archived on local disk.")
		if !verify {
			os.Exit(1)
		}

		fmt.Println("Verifying local archive write access...")
		if err := factory.VerifyWrite(ctx); err != nil {
			log.Fatal().Err(err).Msg("local archive verification failed")
		}
		fmt.Println("Local archive is writable")
		return
	}
	fmt.Println("\nR2 configuration is valid")

	if !verify {
		fmt.Println("\nTo verify write access, run: go run ./cmd/setup-r2 verify")
		return
	}

	fmt.Println("Verifying bucket write access...")
	if err := factory.VerifyR2Write(ctx); err != nil {
		log.Fatal().Err(err).Msg("R2 verification failed")
	}
	fmt.Println("R2 bucket is writable")
}
