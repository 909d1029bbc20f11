// Package main classifies one or more addresses and prints the
// verdicts as JSON to stdout. Useful for spot checks and shell
// pipelines.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"chainguard/internal/chain"
	"chainguard/internal/classifier"
	"chainguard/internal/domain"
	"chainguard/internal/ethaddr"
	"chainguard/internal/llm"
	"chainguard/internal/oracle"
	"chainguard/internal/sanctions"
)

func main() {
	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("ETH_RPC_ENDPOINT"), "Ethereum JSON-RPC HTTP endpoint")
	explorerURL := flag.String("explorer-url", envOr("EXPLORER_API_URL", "https://api.etherscan.io/api"), "Block explorer API URL")
	explorerKey := flag.String("explorer-key", os.Getenv("EXPLORER_API_KEY"), "Block explorer API key (empty disables source lookup)")
	oracleURL := flag.String("oracle-url", envOr("ORACLE_BASE_URL", oracle.DefaultBaseURL), "Token security oracle base URL")
	llmBaseURL := flag.String("llm-base-url", os.Getenv("LLM_BASE_URL"), "Model API base URL (empty disables model analysis)")
	llmAPIKey := flag.String("llm-api-key", os.Getenv("LLM_API_KEY"), "Model API key")
	llmModel := flag.String("llm-model", envOr("LLM_MODEL", "gpt-4o-mini"), "Model name")
	chainName := flag.String("chain", envOr("CHAIN", "ethereum"), "Chain to classify on")
	tier := flag.String("tier", envOr("TIER", "free"), "Subscription tier (free, paid)")
	demoMode := flag.Bool("demo-mode", false, "Demo mode: full verdicts without gating")
	noSanctions := flag.Bool("no-sanctions", false, "Disable the sanctions registry lookup")
	timeout := flag.Duration("timeout", 60*time.Second, "Overall classification timeout")
	verbose := flag.Bool("verbose", false, "Verbose pipeline logging")

	flag.Parse()

	logger := log.New(os.Stderr, "[scan] ", log.LstdFlags)

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <address> [address...]\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	addresses := make([]string, 0, flag.NArg())
	for _, arg := range flag.Args() {
		addr, err := ethaddr.Normalize(arg)
		if err != nil {
			logger.Fatalf("invalid address %q: %v", arg, err)
		}
		addresses = append(addresses, addr)
	}
	if *rpcEndpoint == "" {
		logger.Fatal("--rpc-endpoint is required")
	}
	if t := domain.Tier(*tier); !t.IsValid() {
		logger.Fatalf("invalid --tier %q", *tier)
	}

	var registry *sanctions.Registry
	if !*noSanctions {
		var err error
		registry, err = sanctions.Load()
		if err != nil {
			logger.Fatalf("load sanctions registry: %v", err)
		}
	}

	var explorer chain.SourceProvider
	if *explorerKey != "" {
		explorer = chain.NewExplorerClient(*explorerURL, *explorerKey)
	}

	var model llm.Completer
	if *llmBaseURL != "" {
		model = llm.NewHTTPClient(*llmBaseURL, *llmAPIKey, *llmModel)
	}

	pipeline := classifier.New(classifier.Options{
		Registry:         registry,
		Node:             chain.NewHTTPClient(*rpcEndpoint),
		Explorer:         explorer,
		Oracle:           oracle.NewHTTPClient(*oracleURL),
		Model:            model,
		ChainID:          oracle.ChainID(*chainName),
		Tier:             domain.Tier(*tier),
		DemoMode:         *demoMode,
		DisableSanctions: *noSanctions,
		Verbose:          *verbose,
	})

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	// Classification never fails; one verdict per address, in order.
	for _, addr := range addresses {
		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		record := pipeline.Classify(ctx, addr)
		cancel()

		if err := enc.Encode(struct {
			Address string             `json:"address"`
			Record  *domain.RiskRecord `json:"record"`
		}{addr, record}); err != nil {
			logger.Fatalf("encode verdict: %v", err)
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
