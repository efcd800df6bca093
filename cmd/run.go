package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/khen08/mrt3sim"
	"github.com/khen08/mrt3sim/model"
	"github.com/khen08/mrt3sim/storage"
)

var (
	runScheme     string
	showAggregate bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Simulate service over a demand profile",
	Long:  "Runs the simulation and persists timetable, demand results and metrics",
	RunE:  runSimulation,
}

func init() {
	runCmd.Flags().StringVarP(&runScheme, "scheme", "", "", "Run a single scheme (REGULAR or SKIP-STOP) instead of both")
	runCmd.Flags().BoolVarP(&showAggregate, "aggregate", "", false, "Print the bucketed O-D demand report")
}

func runSimulation(cmd *cobra.Command, args []string) error {
	log := buildLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	records, err := loadDemand(log)
	if err != nil {
		return err
	}

	store, err := buildStorage()
	if err != nil {
		return err
	}

	manager := mrt3sim.NewManager(store)
	manager.Log = log

	results := map[model.Scheme]mrt3sim.SchemeResult{}
	switch runScheme {
	case "":
		results = manager.RunAll(cfg, records)
	case string(model.SchemeRegular), string(model.SchemeSkipStop):
		scheme := model.Scheme(runScheme)
		metrics, err := manager.RunScheme(cfg, scheme, records)
		results[scheme] = mrt3sim.SchemeResult{Metrics: metrics, Err: err}
	default:
		return fmt.Errorf("unknown scheme %q", runScheme)
	}

	failed := false
	for _, scheme := range []model.Scheme{model.SchemeRegular, model.SchemeSkipStop} {
		res, found := results[scheme]
		if !found {
			continue
		}
		if res.Err != nil {
			failed = true
			fmt.Printf("%s: FAILED: %v\n", scheme, res.Err)
			continue
		}
		m := res.Metrics
		fmt.Printf("%s: %d passengers boarded, %d groups completed, avg wait %.1fs, avg travel %.1fs (%.2fs run)\n",
			scheme, m.PassengersBoarded, m.CompletedGroups,
			m.AverageWaitSeconds(), m.AverageTravelSeconds(),
			m.RunDurationSeconds)
	}

	if showAggregate {
		if err := printAggregate(store, results); err != nil {
			return err
		}
	}

	if failed {
		return fmt.Errorf("one or more scheme runs failed")
	}
	return nil
}

// printAggregate reads persisted demand results back and prints the
// bucketed O-D counts. Requires a storage backend with read support.
func printAggregate(store storage.Storage, results map[model.Scheme]mrt3sim.SchemeResult) error {
	reader, ok := store.(storage.Reader)
	if !ok {
		return fmt.Errorf("--aggregate requires a readable storage backend (memory, sqlite or postgres)")
	}

	for _, scheme := range []model.Scheme{model.SchemeRegular, model.SchemeSkipStop} {
		res, found := results[scheme]
		if !found || res.Err != nil {
			continue
		}

		demand, err := reader.DemandResults(scheme)
		if err != nil {
			return fmt.Errorf("reading %s demand results: %w", scheme, err)
		}

		agg := mrt3sim.AggregateDemand(demand)
		keys := make([]mrt3sim.AggregateKey, 0, len(agg))
		for k := range agg {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			a, b := keys[i], keys[j]
			if a.Bucket != b.Bucket {
				return a.Bucket < b.Bucket
			}
			if a.OriginID != b.OriginID {
				return a.OriginID < b.OriginID
			}
			return a.DestinationID < b.DestinationID
		})

		fmt.Printf("\n%s demand by bucket:\n", scheme)
		for _, k := range keys {
			fmt.Printf("  %-13s %2d -> %2d: %d\n", k.Bucket, k.OriginID, k.DestinationID, agg[k])
		}
	}
	return nil
}
