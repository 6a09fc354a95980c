package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"

	_ "github.com/lib/pq" // Postgres driver

	"github.com/meridian-grc/keel/pkg/archive"
	"github.com/meridian-grc/keel/pkg/audit"
	"github.com/meridian-grc/keel/pkg/config"
	"github.com/meridian-grc/keel/pkg/service"
	"github.com/meridian-grc/keel/pkg/store"
	"github.com/meridian-grc/keel/pkg/tenantcache"
)

// runPublishCmd implements `keel publish`: validate every document in the
// directory, store the valid set for the tenant, and attempt the baseline
// publication gate.
//
// Exit codes:
//
//	0 = baseline published
//	1 = publication blocked
//	2 = runtime error
func runPublishCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("publish", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		tenant     string
		dir        string
		jsonOutput bool
	)

	cmd.StringVar(&tenant, "tenant", "", "Tenant id (REQUIRED)")
	cmd.StringVar(&dir, "dir", "", "Directory of module documents, one per kind (REQUIRED)")
	cmd.BoolVar(&jsonOutput, "json", false, "Output the publish result as JSON")

	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if tenant == "" || dir == "" {
		_, _ = fmt.Fprintln(stderr, "Error: --tenant and --dir are required")
		return 2
	}

	cfg := config.Load()
	ctx := context.Background()

	arena, err := tenantcache.New(cfg.TenantCacheMax, func(string) (*store.Store, error) {
		return store.Open(cfg.StoreDriver, cfg.StoreDSN)
	})
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	defer arena.Close()

	arch, err := archive.NewFromEnv(ctx)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	svc, err := service.New(service.Options{
		Stores:  arena,
		Archive: arch,
		Audit:   audit.NewLogger(),
	})
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	modules, err := loadModuleDir(dir)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	for kind, doc := range modules {
		res, err := svc.ValidateModule(ctx, tenant, kind, doc)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: validate %s: %v\n", kind, err)
			return 2
		}
		if !jsonOutput {
			printResult(stdout, kind, res)
		}
	}

	result, err := svc.PublishBaseline(ctx, tenant)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(result, "", "  ")
		_, _ = fmt.Fprintln(stdout, string(data))
	} else {
		if result.Published {
			_, _ = fmt.Fprintf(stdout, "Published baseline %s\n", result.BaselineID)
			_, _ = fmt.Fprintf(stdout, "Snapshot: %s\n", result.SnapshotHash)
		} else {
			_, _ = fmt.Fprintln(stdout, "Publish: BLOCKED")
			for _, b := range result.Blockers {
				_, _ = fmt.Fprintf(stdout, "  blocker: %s\n", b)
			}
		}
	}

	if !result.Published {
		return 1
	}
	return 0
}
