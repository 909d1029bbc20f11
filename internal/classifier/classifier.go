// Package classifier provides the address risk-classification pipeline.
// It coordinates: sanctions lookup → type resolution → contract
// enrichment → model analysis → fallbacks
package classifier

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"chainguard/internal/analyzer"
	"chainguard/internal/chain"
	"chainguard/internal/domain"
	"chainguard/internal/llm"
	"chainguard/internal/oracle"
	"chainguard/internal/risk"
	"chainguard/internal/sanctions"
)

// Classifier runs the ordered decision process that turns an address
// into a risk verdict. Classify never fails: every path terminates
// with exactly one RiskRecord.
type Classifier struct {
	registry *sanctions.Registry
	node     chain.Introspector
	explorer chain.SourceProvider
	oracle   oracle.Client
	model    llm.Completer

	chainID         int
	tier            domain.Tier
	demoMode        bool
	sanctionsChecks bool

	verbose bool
}

// Options for creating Classifier. Explorer, Oracle, and Model are
// optional collaborators; a nil value disables the corresponding step.
type Options struct {
	Registry *sanctions.Registry
	Node     chain.Introspector
	Explorer chain.SourceProvider
	Oracle   oracle.Client
	Model    llm.Completer

	ChainID  int
	Tier     domain.Tier
	DemoMode bool

	// DisableSanctions skips the registry lookup entirely.
	DisableSanctions bool

	Verbose bool
}

// New creates a new Classifier.
func New(opts Options) *Classifier {
	chainID := opts.ChainID
	if chainID == 0 {
		chainID = chain.ChainEthereum
	}
	tier := opts.Tier
	if tier == "" {
		tier = domain.TierFree
	}
	return &Classifier{
		registry:        opts.Registry,
		node:            opts.Node,
		explorer:        opts.Explorer,
		oracle:          opts.Oracle,
		model:           opts.Model,
		chainID:         chainID,
		tier:            tier,
		demoMode:        opts.DemoMode,
		sanctionsChecks: !opts.DisableSanctions && opts.Registry != nil,
		verbose:         opts.Verbose,
	}
}

// Classify resolves one address to a risk verdict. The address must
// already be normalized (lowercase hex). Any unexpected failure is
// converted into a cautionary yellow record; the caller always gets a
// verdict.
func (c *Classifier) Classify(ctx context.Context, address string) (record *domain.RiskRecord) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[classifier] panic classifying %s: %v", address, r)
			record = safetyNetRecord(fmt.Sprintf("%v", r))
		}
	}()
	return c.classify(ctx, address)
}

func (c *Classifier) classify(ctx context.Context, address string) *domain.RiskRecord {
	// Step 1: sanctions lookup. A hit is non-overridable and needs no
	// remote calls.
	if c.sanctionsChecks {
		if entry := c.registry.Lookup(address); entry != nil {
			c.logf("sanctions hit for %s: %s", address, entry.Name)
			return sanctionsRecord(entry)
		}
	}

	// Step 2: type resolution. A failing node reads as "no code".
	addrType := domain.TypeWallet
	code, err := c.node.GetCode(ctx, address)
	if err != nil {
		log.Printf("[classifier] getCode failed for %s: %v", address, err)
	} else if chain.HasCode(code) {
		addrType = domain.TypeContract
	}
	c.logf("resolved %s as %s", address, addrType)

	// Step 3: wallet fast path. EOAs carry no code-based risk surface.
	if addrType == domain.TypeWallet {
		return walletRecord()
	}

	// Step 4: contract enrichment. Balance and tx count are mutually
	// independent, gather them concurrently. Failures read as no data.
	var (
		balance string
		txCount *uint64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		wei, err := c.node.GetBalance(gctx, address)
		if err != nil {
			log.Printf("[classifier] getBalance failed for %s: %v", address, err)
			return nil
		}
		balance = chain.FormatEth(wei)
		return nil
	})
	g.Go(func() error {
		count, err := c.node.GetTransactionCount(gctx, address)
		if err != nil {
			log.Printf("[classifier] getTransactionCount failed for %s: %v", address, err)
			return nil
		}
		txCount = &count
		return nil
	})
	_ = g.Wait()

	var source *chain.ContractSource
	if c.explorer != nil {
		source, err = c.explorer.GetContractSource(ctx, address)
		if err != nil {
			log.Printf("[classifier] source lookup failed for %s: %v", address, err)
			source = nil
		}
	}

	var oracleRec *domain.RiskRecord
	if c.oracle != nil {
		report, err := c.oracle.GetReport(ctx, address, c.chainID)
		if err != nil {
			log.Printf("[classifier] oracle failed for %s: %v", address, err)
		} else if report != nil {
			oracleRec = risk.Normalize(report)
			c.logf("oracle verdict for %s: %s/%s", address, oracleRec.Status, oracleRec.RiskLevel)

			// An oracle-certain critical verdict is authoritative, skip
			// the model entirely.
			if oracleRec.Status == domain.StatusRed && oracleRec.RiskLevel == domain.RiskCritical {
				out := *oracleRec
				out.Type = domain.TypeContract
				out.Tooltip = out.Summary
				return &out
			}
		}
	}

	// Step 5: model analysis. Any failure falls through to the
	// heuristic fallbacks.
	if c.model != nil {
		prompt := analyzer.BuildPrompt(analyzer.PromptData{
			Address:  address,
			Type:     addrType,
			Balance:  balance,
			TxCount:  txCount,
			Contract: source,
			Oracle:   oracleRec,
		}, c.tier)

		completion, err := c.model.Complete(ctx, prompt)
		if err != nil {
			log.Printf("[classifier] model analysis failed for %s: %v", address, err)
		} else {
			parsed := analyzer.ParseResponse(completion)
			parsed.Type = addrType
			return analyzer.ApplyTierGating(parsed, c.tier, c.demoMode)
		}
	}

	// Step 6: oracle as fallback.
	if oracleRec != nil {
		c.logf("using oracle verdict as fallback for %s", address)
		out := *oracleRec
		out.Type = addrType
		out.Tooltip = out.Summary
		return &out
	}

	// Step 7: generic fallback.
	out := analyzer.FallbackRecord(addrType, false)
	out.Type = addrType
	return out
}

func sanctionsRecord(entry *domain.SanctionsEntry) *domain.RiskRecord {
	flags := append([]string{"sanctions", string(entry.Type)}, entry.Tags...)
	return &domain.RiskRecord{
		Status:        domain.StatusRed,
		RiskLevel:     domain.RiskCritical,
		Summary:       "🚫 " + entry.Name,
		Reason:        entry.Reason,
		Tooltip:       fmt.Sprintf("CRITICAL: %s - %s", entry.Name, entry.Source),
		Flags:         flags,
		Confidence:    1.0,
		Type:          entry.Type,
		SanctionsData: entry,
	}
}

func walletRecord() *domain.RiskRecord {
	return &domain.RiskRecord{
		Status:     domain.StatusBlue,
		RiskLevel:  domain.RiskInfo,
		Summary:    "Wallet address detected",
		Reason:     "Standard wallet address. No immediate risk indicators.",
		Tooltip:    "Wallet Address - Standard EOA",
		Flags:      []string{"wallet"},
		Confidence: 0.8,
		Type:       domain.TypeWallet,
	}
}

func safetyNetRecord(msg string) *domain.RiskRecord {
	return &domain.RiskRecord{
		Status:     domain.StatusYellow,
		RiskLevel:  domain.RiskUnknown,
		Summary:    "Analysis failed",
		Reason:     "Unexpected failure during analysis. Manual review recommended.",
		Tooltip:    "Analysis failed - review manually",
		Flags:      []string{"error", "manual_review_needed"},
		Confidence: 0,
		Error:      msg,
	}
}

func (c *Classifier) logf(format string, args ...interface{}) {
	if c.verbose {
		log.Printf("[classifier] "+format, args...)
	}
}
