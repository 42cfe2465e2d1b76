// Command spicesim is the CLI glue around the numerical core: it parses a
// netlist file, runs one or more analyses, and writes the result as CSV or
// JSON. It drives pkg/netlist, pkg/circuit, pkg/mna, pkg/solver, and
// pkg/simrun but contains no circuit-solving logic of its own.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/danwright/spicecore/pkg/netlist"
	"github.com/danwright/spicecore/pkg/simrun"
	"github.com/danwright/spicecore/pkg/solver"
)

var log = logrus.New()

var (
	format     string
	outputPath string
	logLevel   string
	human      bool
	method     string
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "spicesim",
		Short: "SPICE-style circuit simulator numerical core",
	}
	root.PersistentFlags().StringVar(&format, "format", "csv", "result format: csv or json")
	root.PersistentFlags().StringVarP(&outputPath, "output", "o", "", "output file (default stdout)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	root.PersistentFlags().BoolVar(&human, "human", false, "log the final point's node voltages in engineering units")
	root.PersistentFlags().StringVar(&method, "method", "auto", "linear solver method: auto, lu, qr, cg, bicgstab")
	cobra.OnInitialize(func() {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			level = logrus.InfoLevel
		}
		log.SetLevel(level)
	})

	root.AddCommand(runCmd())
	root.AddCommand(opCmd())
	root.AddCommand(dcCmd())
	root.AddCommand(tranCmd())
	return root
}

// runCmd executes every analysis directive found in the netlist itself
// (.op/.tran/.dc), in the order they appear.
func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <netlist>",
		Short: "run every analysis the netlist's directives request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pn, sim, err := loadNetlist(args[0])
			if err != nil {
				return err
			}
			if len(pn.Analyses) == 0 {
				return fmt.Errorf("netlist %s requests no analyses", args[0])
			}
			ok := true
			for _, req := range pn.Analyses {
				res, err := sim.RunAnalysis(req)
				if err != nil {
					return err
				}
				if err := emit(res); err != nil {
					return err
				}
				ok = ok && res.Success
			}
			if !ok {
				return fmt.Errorf("one or more analyses did not converge")
			}
			return nil
		},
	}
}

func opCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "op <netlist>",
		Short: "run a single operating-point analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, sim, err := loadNetlist(args[0])
			if err != nil {
				return err
			}
			res, err := sim.RunOperatingPoint()
			if err != nil {
				return err
			}
			return emitOrFail(res)
		},
	}
}

func dcCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dc <netlist> <source> <start> <stop> <step>",
		Short: "run a single DC sweep analysis",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, sim, err := loadNetlist(args[0])
			if err != nil {
				return err
			}
			start, err := netlist.ParseValue(args[2])
			if err != nil {
				return fmt.Errorf("invalid start: %w", err)
			}
			stop, err := netlist.ParseValue(args[3])
			if err != nil {
				return fmt.Errorf("invalid stop: %w", err)
			}
			step, err := netlist.ParseValue(args[4])
			if err != nil {
				return fmt.Errorf("invalid step: %w", err)
			}
			res, err := sim.RunDCSweep(args[1], start, stop, step)
			if err != nil {
				return err
			}
			return emitOrFail(res)
		},
	}
}

func tranCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tran <netlist> <tstep> <tstop>",
		Short: "run a single transient analysis",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, sim, err := loadNetlist(args[0])
			if err != nil {
				return err
			}
			tstep, err := netlist.ParseValue(args[1])
			if err != nil {
				return fmt.Errorf("invalid tstep: %w", err)
			}
			tstop, err := netlist.ParseValue(args[2])
			if err != nil {
				return fmt.Errorf("invalid tstop: %w", err)
			}
			res, err := sim.RunTransient(tstep, tstop)
			if err != nil {
				return err
			}
			return emitOrFail(res)
		},
	}
}

func loadNetlist(path string) (*netlist.ParsedNetlist, *simrun.Simulator, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}

	pn, err := netlist.Parse(string(text))
	if err != nil {
		return nil, nil, err
	}
	for _, w := range pn.Warnings {
		log.Warn(w)
	}

	c, err := pn.ToCircuit()
	if err != nil {
		return nil, nil, err
	}

	sim, err := simrun.Load(c)
	if err != nil {
		return nil, nil, err
	}
	m, err := parseMethod(method)
	if err != nil {
		return nil, nil, err
	}
	sim.WithMethod(m)
	log.WithFields(logrus.Fields{
		"title":    pn.Title,
		"elements": len(pn.Elements),
	}).Info("circuit loaded")
	log.Debug(c.Summary())

	return pn, sim, nil
}

func parseMethod(s string) (solver.Method, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return solver.MethodAuto, nil
	case "lu":
		return solver.MethodLU, nil
	case "qr":
		return solver.MethodQR, nil
	case "cg":
		return solver.MethodCG, nil
	case "bicgstab":
		return solver.MethodBiCGSTAB, nil
	default:
		return solver.MethodAuto, fmt.Errorf("unknown --method %q (want auto, lu, qr, cg, bicgstab)", s)
	}
}

func emitOrFail(res *simrun.Result) error {
	if err := emit(res); err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("analysis did not converge")
	}
	return nil
}

func emit(res *simrun.Result) error {
	for _, step := range res.ConvergenceInfo {
		if !step.Converged {
			log.WithFields(logrus.Fields{
				"step":     step.Index,
				"method":   step.Method,
				"residual": step.ResidualNorm,
			}).Warn("step did not converge")
		}
	}
	if len(res.ConvergenceInfo) > 0 {
		log.WithField("method", res.ConvergenceInfo[0].Method).Infof("solved %d point(s)", len(res.TimePoints))
	}
	if human && len(res.TimePoints) > 0 {
		last := len(res.TimePoints) - 1
		for _, name := range sortedNames(res.NodeVoltages) {
			log.Infof("V(%s) = %s", name, formatEngineering(res.NodeVoltages[name][last], "V"))
		}
		for _, name := range sortedNames(res.SourceCurrents) {
			log.Infof("I(%s) = %s", name, formatEngineering(res.SourceCurrents[name][last], "A"))
		}
	}

	out := os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("creating %s: %w", outputPath, err)
		}
		defer f.Close()
		out = f
	}

	switch format {
	case "json":
		return res.JSON(out)
	case "csv", "":
		return res.CSV(out)
	default:
		return fmt.Errorf("unknown format %q (want csv or json)", format)
	}
}
