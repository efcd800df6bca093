package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/khen08/mrt3sim"
	"github.com/khen08/mrt3sim/model"
)

var loopTimeCmd = &cobra.Command{
	Use:   "loop-time",
	Short: "Print loop times and period headways",
	Long:  "Computes the round-trip loop time and the derived headway for every service period, per scheme",
	RunE:  printLoopTimes,
}

func printLoopTimes(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	for _, scheme := range []model.Scheme{model.SchemeRegular, model.SchemeSkipStop} {
		sim, err := mrt3sim.NewSimulation(cfg, scheme, nil, buildLogger())
		if err != nil {
			return fmt.Errorf("initializing %s: %w", scheme, err)
		}

		fmt.Printf("%s: loop time %s\n", scheme, sim.LoopTime())
		for _, p := range cfg.ServicePeriods {
			fmt.Printf("  %-20s %02d:00  %2d trains  headway %s\n",
				p.Name, p.StartHour, p.TrainCount(scheme), sim.Headway(p.Name))
		}
	}
	return nil
}
