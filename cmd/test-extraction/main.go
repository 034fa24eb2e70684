package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/trackwise/expense-voice/internal/extraction"
)

func main() {
	// Parse command line flags
	apiKey := flag.String("key", "", "OpenAI API key (or set OPENAI_API_KEY env var)")
	baseURL := flag.String("base-url", "", "Override the API base URL")
	model := flag.String("model", "gpt-4o-mini", "Model to use")
	transcript := flag.String("transcript", "I spent 250 rupees on lunch today", "Transcript to extract from")
	language := flag.String("language", "auto", "Language tag, or auto to detect")
	promptsFile := flag.String("prompts", "", "Optional prompt override YAML")
	timeout := flag.Duration("timeout", 20*time.Second, "API call timeout")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	// Initialize logger
	var logger *zap.Logger
	var err error
	if *verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Get API key from flag or environment
	if *apiKey == "" {
		*apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if *apiKey == "" {
		fmt.Fprintf(os.Stderr, "ERROR: OPENAI_API_KEY not set and no --key flag provided\n")
		fmt.Fprintf(os.Stderr, "Usage: test-extraction --key sk-... [--transcript <text>] [--language <tag>]\n")
		os.Exit(1)
	}

	fmt.Println("=== Expense Extraction Test ===")
	fmt.Println("Configuration:")
	fmt.Printf("  Model: %s\n", *model)
	fmt.Printf("  Language: %s\n", *language)
	fmt.Printf("  Timeout: %v\n", *timeout)
	fmt.Printf("  API key length: %d chars\n", len(*apiKey))
	fmt.Println()

	// Load prompts
	promptCfg := extraction.DefaultPrompts()
	if *promptsFile != "" {
		promptCfg, err = extraction.LoadPrompts(*promptsFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: Failed to load prompts: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Loaded prompt overrides from %s\n", *promptsFile)
	}
	prompts, err := extraction.NewPromptBuilder(promptCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to build prompts: %v\n", err)
		os.Exit(1)
	}

	extractor := extraction.NewExtractor(extraction.Config{
		APIKey:  *apiKey,
		BaseURL: *baseURL,
		Model:   *model,
		Timeout: *timeout,
	}, prompts, logger)

	fmt.Printf("Transcript: %q\n\n", *transcript)
	fmt.Println("Sending request...")

	lang := *language
	if lang == "auto" {
		lang = ""
	}

	startTime := time.Now()
	result, err := extractor.Extract(context.Background(), *transcript, lang)
	duration := time.Since(startTime)

	if err != nil {
		var parseErr *extraction.ParseError
		fmt.Fprintf(os.Stderr, "ERROR: extraction failed after %v\n", duration)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.As(err, &parseErr) {
			fmt.Fprintf(os.Stderr, "Raw model reply:\n%s\n", parseErr.Raw)
		}
		os.Exit(1)
	}

	fmt.Printf("Response received in %v\n\n", duration)

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: failed to render result: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
