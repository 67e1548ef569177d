package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/dataview/mailscrub"
	"github.com/dataview/mailscrub/ingest"
	"github.com/dataview/mailscrub/internal/config"
	"github.com/dataview/mailscrub/internal/logger"
	"github.com/dataview/mailscrub/report"
	"github.com/dataview/mailscrub/types"
)

func main() {
	var (
		input      = flag.String("input", "", "input CSV file containing email addresses")
		column     = flag.String("column", "", "name of the email column (default: autodetect)")
		output     = flag.String("output", "", "output CSV file for validation results")
		configPath = flag.String("config", ".", "directory containing config.yaml")
		inspect    = flag.Bool("inspect", false, "print the input file structure and exit")
	)
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "usage: mailscrub -input emails.csv [-column email] [-output results.csv]")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:     cfg.Logging.Level,
		File:      cfg.Logging.File,
		MaxSizeMB: cfg.Logging.MaxSizeMB,
		MaxFiles:  cfg.Logging.MaxFiles,
	})

	f, err := os.Open(*input)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open input file")
	}
	file, err := ingest.ReadCSV(f)
	_ = f.Close()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse input file")
	}

	info := file.Inspect()
	if *inspect {
		fmt.Printf("rows: %d, columns: %d\n", info.TotalRows, info.TotalColumns)
		fmt.Printf("columns: %s\n", strings.Join(info.Columns, ", "))
		fmt.Printf("email-like columns: %s\n", strings.Join(info.EmailLikeColumns, ", "))
		return
	}

	col := *column
	if col == "" {
		if len(info.EmailLikeColumns) == 0 {
			log.Fatal().Msg("no email-like column found; pass -column explicitly")
		}
		col = info.EmailLikeColumns[0]
		log.Info().Str("column", col).Msg("autodetected email column")
	}

	emails, err := file.ExtractEmails(col)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to extract emails")
	}
	if len(emails) == 0 {
		log.Fatal().Str("column", col).Msg("no candidate addresses found")
	}
	log.Info().Int("candidates", len(emails)).Int("workers", cfg.Validation.Workers).Msg("starting validation")

	v := mailscrub.New(mailscrub.Options{
		Timeout:  cfg.Validation.Timeout,
		Workers:  cfg.Validation.Workers,
		CacheMX:  cfg.Validation.CacheMX,
		Port:     cfg.SMTP.Port,
		HeloHost: cfg.SMTP.HeloHost,
		MailFrom: cfg.SMTP.MailFrom,
		Logger:   &log,
	})

	outcomes := make([]types.Outcome, 0, len(emails))
	for o := range v.ValidateBatch(context.Background(), emails) {
		log.Debug().
			Str("email", o.Email).
			Str("status", o.Status).
			Str("reason", o.Reason).
			Msg("outcome")
		outcomes = append(outcomes, o)
	}

	s := report.Summarize(outcomes)
	fmt.Printf("validated %d addresses: %d valid (%.1f%%), %d invalid (%.1f%%), %d errors (%.1f%%)\n",
		s.Total, s.Valid, s.PercentValid(), s.Invalid, s.PercentInvalid(), s.Errors, s.PercentErrors())
	fmt.Printf("list health: %s\n", s.HealthBand())

	if recs := report.Recommendations(outcomes); len(recs) > 0 {
		fmt.Println("suggested corrections:")
		for _, r := range recs {
			fmt.Printf("  %s -> %s\n", r.Email, r.Suggestion)
		}
	}

	if *output != "" {
		out, err := os.Create(*output)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create output file")
		}
		if err := report.WriteCSV(out, outcomes); err != nil {
			log.Fatal().Err(err).Msg("failed to write results")
		}
		if err := out.Close(); err != nil {
			log.Fatal().Err(err).Msg("failed to close output file")
		}
		log.Info().Str("file", *output).Msg("results written")
	}
}
