package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/povarna/generative-ai-agents/crm-assistant/internal/config"
	"github.com/povarna/generative-ai-agents/crm-assistant/internal/setup/logger"
	"github.com/povarna/generative-ai-agents/crm-assistant/internal/sqlguard"
)

const (
	exitSafe     = 0
	exitRejected = 1
	exitUsage    = 2
)

type output struct {
	Safe    bool                `json:"safe"`
	Reason  sqlguard.ReasonCode `json:"reason,omitempty"`
	Message string              `json:"message"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run validates one query from -query or stdin and reports the verdict.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("sqlcheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	query := fs.String("query", "", "query to validate (reads stdin when empty)")
	maxLimit := fs.Int("max-limit", sqlguard.DefaultMaxLimit, "largest LIMIT a query may use")
	configPath := fs.String("config", "", "assistant config file; its sandbox.max_limit overrides -max-limit")
	asJSON := fs.Bool("json", false, "print the verdict as JSON")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	log := logger.New("warn", stderr, true)

	if *configPath != "" {
		cfg, err := config.LoadFile(*configPath)
		if err != nil {
			log.Error().Err(err).Msg("Unable to load config")
			return exitUsage
		}
		*maxLimit = cfg.Sandbox.MaxLimit
	}
	if *maxLimit <= 0 {
		log.Error().Int("max_limit", *maxLimit).Msg("max-limit must be positive")
		return exitUsage
	}

	text := *query
	if text == "" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			log.Error().Err(err).Msg("Unable to read stdin")
			return exitUsage
		}
		text = string(data)
	}
	if strings.TrimSpace(text) == "" {
		log.Error().Msg("No query given")
		return exitUsage
	}

	verdict := sqlguard.NewValidator(*maxLimit).Validate(text)
	out := output{Safe: verdict.Safe, Reason: verdict.Reason, Message: "The query passed every check."}
	if !verdict.Safe {
		out.Message = verdict.Reason.Message()
	}

	if *asJSON {
		if err := json.NewEncoder(stdout).Encode(out); err != nil {
			log.Error().Err(err).Msg("Unable to write verdict")
			return exitUsage
		}
	} else if verdict.Safe {
		fmt.Fprintln(stdout, "SAFE")
	} else {
		fmt.Fprintf(stdout, "REJECTED %s: %s\n", verdict.Reason, out.Message)
	}

	if !verdict.Safe {
		return exitRejected
	}
	return exitSafe
}
