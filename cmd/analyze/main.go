// Command analyze runs the full flow on one report file: ingest, page
// filter, model extraction, then the analysis pipeline, writing a markdown
// summary and the spreadsheet rows.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"financial_analyst/pkg/core/agent"
	"financial_analyst/pkg/core/config"
	"financial_analyst/pkg/core/extract"
	"financial_analyst/pkg/core/filter"
	"financial_analyst/pkg/core/ingest"
	"financial_analyst/pkg/core/pipeline"
	"financial_analyst/pkg/core/render"
	"financial_analyst/pkg/core/validate"
	"financial_analyst/pkg/models"
)

func main() {
	godotenv.Load()

	var (
		reportPath  = flag.String("report", "", "report file to analyze (.md, .txt, .html, .xhtml)")
		jsonPath    = flag.String("json", "", "pre-extracted company report JSON, skips the model call")
		configPath  = flag.String("config", "config/config.yaml", "engine configuration")
		agentPath   = flag.String("agents", "config/agents.yaml", "provider routing configuration")
		outPath     = flag.String("out", "analysis.md", "markdown summary output")
		sheetPath   = flag.String("sheet", "", "optional spreadsheet rows JSON output")
		skipFilter  = flag.Bool("no-filter", false, "extract from the whole document instead of filtered pages")
		timeoutFlag = flag.Duration("timeout", 5*time.Minute, "extraction timeout")
	)
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if *reportPath == "" && *jsonPath == "" {
		log.Fatal().Msg("one of -report or -json is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Warn().Err(err).Msg("config not loaded, using defaults")
	}

	report, err := loadReport(*reportPath, *jsonPath, *agentPath, cfg, *skipFilter, *timeoutFlag, log)
	if err != nil {
		log.Fatal().Err(err).Msg("could not obtain company report")
	}
	log.Info().Str("company", report.CompanyName).Int("periods", len(report.Periods)).Msg("report loaded")

	orch := pipeline.New(cfg.Assumptions, cfg.Rates, validate.DefaultOptions(), log)
	res, err := orch.RunReport(*report)
	if err != nil {
		if res == nil {
			log.Fatal().Err(err).Msg("analysis failed")
		}
		log.Warn().Err(err).Msg("partial analysis, some sections omitted")
	}

	summary := render.MarkdownSummary(res, "")
	if err := os.WriteFile(*outPath, []byte(summary), 0o644); err != nil {
		log.Fatal().Err(err).Msg("could not write summary")
	}
	log.Info().Str("path", *outPath).Msg("summary written")

	if *sheetPath != "" && res.Valuation != nil {
		rows := render.SpreadsheetRows(res.Valuation)
		data, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			log.Fatal().Err(err).Msg("could not marshal spreadsheet rows")
		}
		if err := os.WriteFile(*sheetPath, data, 0o644); err != nil {
			log.Fatal().Err(err).Msg("could not write spreadsheet rows")
		}
		log.Info().Str("path", *sheetPath).Msg("spreadsheet rows written")
	}
}

func loadReport(reportPath, jsonPath, agentPath string, cfg config.Config, skipFilter bool, timeout time.Duration, log zerolog.Logger) (*models.CompanyReport, error) {
	if jsonPath != "" {
		data, err := os.ReadFile(jsonPath)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", jsonPath, err)
		}
		var report models.CompanyReport
		if err := json.Unmarshal(data, &report); err != nil {
			return nil, fmt.Errorf("parse %s: %w", jsonPath, err)
		}
		return &report, nil
	}

	strategy, err := ingest.ForFile(reportPath)
	if err != nil {
		return nil, err
	}
	doc, err := strategy.Ingest(reportPath)
	if err != nil {
		return nil, err
	}
	log.Info().Str("strategy", strategy.Name()).Int("pages", len(doc.Pages)).Msg("ingested")

	text := doc.Text()
	if !skipFilter {
		kept := filter.FilterPages(doc.Pages, cfg.Filter)
		if len(kept) == 0 {
			return nil, fmt.Errorf("no pages passed the statement filter; retry with -no-filter")
		}
		log.Info().Int("kept", len(kept)).Int("total", len(doc.Pages)).Msg("pages filtered")
		text = filter.JoinPages(kept)
	}

	agentCfg := agent.DefaultConfig()
	if loaded, err := agent.LoadConfig(agentPath); err == nil {
		agentCfg = loaded
	} else {
		log.Warn().Err(err).Msg("agent config not loaded, routing everything to gemini")
	}
	mgr := agent.NewManager(agentCfg)
	provider, err := mgr.ProviderFor(extract.Role)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return extract.New(provider, mgr.ModelFor(extract.Role), log).Extract(ctx, text)
}
