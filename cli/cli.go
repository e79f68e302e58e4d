// Package cli implements the command line interface for running
// training algorithms from the terminal
package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/samuelfneumann/govalue/algo/qlearning"
	"github.com/samuelfneumann/govalue/environment"
	"github.com/samuelfneumann/govalue/environment/chainwalk"
	"github.com/samuelfneumann/govalue/environment/gridworld"
	"github.com/samuelfneumann/govalue/tracker"
	"github.com/samuelfneumann/govalue/utils/matutils"
)

// newEnvironment constructs the named built-in environment
func newEnvironment(name string) (environment.Environment, error) {
	switch name {
	case "chain":
		env, err := chainwalk.New(5, 0, 1)
		if err != nil {
			return nil, err
		}
		return env, nil

	case "gridworld":
		env, err := gridworld.New(0, 0, 5, 5, []int{4}, []int{4}, -1, 0)
		if err != nil {
			return nil, err
		}
		return env, nil
	}

	return nil, fmt.Errorf("no such environment %q, have \"chain\" and "+
		"\"gridworld\"", name)
}

// RootCommand returns the root command of the command line interface
func RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "govalue",
		Short:        "Estimate and optimize value functions",
		SilenceUsage: true,
	}
	root.AddCommand(qLearningCommand())
	return root
}

// qLearningCommand returns the command that trains a tabular
// Q-Learning agent on a built-in environment
func qLearningCommand() *cobra.Command {
	var envName string
	var alpha, epsilon, gamma float64
	var numEpisodes int
	var seed uint64
	var dataDir string

	cmd := &cobra.Command{
		Use:   "qlearning",
		Short: "Train a tabular Q-Learning agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := qlearning.Config{
				Alpha:        alpha,
				Epsilon:      epsilon,
				Gamma:        gamma,
				NumEpisodes:  numEpisodes,
				ShowProgress: true,
			}
			if err := config.Validate(); err != nil {
				return err
			}

			logger, err := tracker.New(dataDir, 0)
			if err != nil {
				return err
			}
			if dataDir != "" {
				store, err := tracker.NewSQLiteStore(
					filepath.Join(dataDir, "metrics.db"))
				if err != nil {
					return err
				}
				defer store.Close()
				logger.Attach(store)
			}

			envFn := func() (environment.Environment, error) {
				return newEnvironment(envName)
			}

			Q, _, err := qlearning.Train(envFn, config, seed, logger)
			if err != nil {
				return err
			}

			fmt.Println("Action values:")
			fmt.Println(matutils.Format(Q))
			return logger.Save()
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&envName, "env", "", "environment to train on")
	flags.Float64Var(&alpha, "alpha", 0.1, "step size")
	flags.Float64Var(&epsilon, "epsilon", 0.1, "exploration rate")
	flags.Float64Var(&gamma, "gamma", 0.99, "discount factor")
	flags.IntVar(&numEpisodes, "num_episodes", 100, "episodes to run")
	flags.Uint64VarP(&seed, "seed", "s", 0, "seed fixing all randomness")
	flags.StringVar(&dataDir, "data_dir", "", "directory for experiment data")
	cobra.CheckErr(cmd.MarkFlagRequired("env"))

	return cmd
}
