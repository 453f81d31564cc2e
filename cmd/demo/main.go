// Command demo wires up one cobra subcommand per seed scenario in
// spec.md §8 (S1-S6), replacing aryszka-cast's scratch cmd/test/test.go
// and tools/names.go entry points with a proper CLI surface.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aryszka/reactstream"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	tunables := reactstream.DefaultTunables()

	root := &cobra.Command{
		Use:   "demo",
		Short: "Runs the reactstream seed scenarios (spec §8, S1-S6)",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			tunables.Apply()
			return nil
		},
	}
	tunables.BindFlags(root.PersistentFlags())

	root.AddCommand(
		s1Cmd(&tunables),
		s2Cmd(&tunables),
		s3Cmd(&tunables),
		s4Cmd(&tunables),
		s5Cmd(&tunables),
		s6Cmd(&tunables),
	)
	return root
}

// pushSource builds a push-source preloaded with elems and already
// completed, standing in for "source([...])" in the scenario text.
func pushSource(t *reactstream.Tunables, elems []any) *reactstream.PushSource {
	ps := reactstream.NewPushSource(t.PushSourceInitialCapacity, t.PushSourceMaxCapacity, nil, nil)
	ps.OfferMany(elems)
	ps.Complete()
	return ps
}

func drainSync(roots ...*reactstream.Node) error {
	h := reactstream.RunGraph(roots...)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return h.Wait(ctx)
}

func s1Cmd(t *reactstream.Tunables) *cobra.Command {
	return &cobra.Command{
		Use:   "s1",
		Short: "source([1,2,3]) -> map(+1) -> drain_all => [2,3,4]",
		RunE: func(cmd *cobra.Command, args []string) error {
			src := pushSource(t, []any{1, 2, 3})
			m := reactstream.NewMap(func(e any) (any, error) { return e.(int) + 1, nil })
			if err := reactstream.Connect(src.Node.Out(0), m.In(0)); err != nil {
				return err
			}
			var out []any
			sink := reactstream.NewSink(func(e any) { out = append(out, e) }, nil)
			if err := reactstream.Connect(m.Out(0), sink.In(0)); err != nil {
				return err
			}
			if err := drainSync(src.Node); err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	}
}

func s2Cmd(t *reactstream.Tunables) *cobra.Command {
	return &cobra.Command{
		Use:   "s2",
		Short: "source([]) -> prefix_and_tail(3) -> drain_head_pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrefixTail(t, nil, 3)
		},
	}
}

func s3Cmd(t *reactstream.Tunables) *cobra.Command {
	return &cobra.Command{
		Use:   "s3",
		Short: "source([10,20,30,40,50]) -> prefix_and_tail(2) -> drain_head_pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrefixTail(t, []any{10, 20, 30, 40, 50}, 2)
		},
	}
}

func runPrefixTail(t *reactstream.Tunables, elems []any, prefixSize uint32) error {
	src := pushSource(t, elems)
	pt := reactstream.NewPrefixAndTail(prefixSize)
	if err := reactstream.Connect(src.Node.Out(0), pt.In(0)); err != nil {
		return err
	}

	var tail *reactstream.Node
	head := reactstream.NewSink(func(e any) {
		res := e.(reactstream.PrefixAndTailResult)
		tail = res.Tail
		fmt.Println("prefix:", res.Prefix)
	}, nil)
	if err := reactstream.Connect(pt.Out(0), head.In(0)); err != nil {
		return err
	}
	// The source only finishes once the tail is drained, so this run is
	// not waited on; a synchronous graph has delivered the head pair by
	// the time RunGraph returns.
	reactstream.RunGraph(src.Node)

	var tailOut []any
	tailSink := reactstream.NewSink(func(e any) { tailOut = append(tailOut, e) }, nil)
	if err := reactstream.Connect(tail.Out(0), tailSink.In(0)); err != nil {
		return err
	}
	if err := drainSync(tail); err != nil {
		return err
	}
	fmt.Println("tail:", tailOut)
	return nil
}

func s4Cmd(t *reactstream.Tunables) *cobra.Command {
	return &cobra.Command{
		Use:   "s4",
		Short: "source([1..9]) -> fanout_round_robin -> [drain_a, drain_b, drain_c]",
		RunE: func(cmd *cobra.Command, args []string) error {
			elems := make([]any, 9)
			for i := range elems {
				elems[i] = i + 1
			}
			src := pushSource(t, elems)
			fo := reactstream.NewFanOutRoundRobin(3, false)
			if err := reactstream.Connect(src.Node.Out(0), fo.In(0)); err != nil {
				return err
			}

			outs := make([][]any, 3)
			for i := 0; i < 3; i++ {
				i := i
				sink := reactstream.NewSink(func(e any) { outs[i] = append(outs[i], e) }, nil)
				if err := reactstream.Connect(fo.Out(i), sink.In(0)); err != nil {
					return err
				}
			}
			if err := drainSync(src.Node); err != nil {
				return err
			}
			fmt.Println("a:", outs[0], "b:", outs[1], "c:", outs[2])
			return nil
		},
	}
}

func s5Cmd(t *reactstream.Tunables) *cobra.Command {
	return &cobra.Command{
		Use:   "s5",
		Short: "fibonacci via Coupling (simplified: buffer/sliding/take/broadcast aren't core node kinds)",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := runFibonacci(t)
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	}
}

// runFibonacci demonstrates the Fibonacci-via-cycle scenario (spec.md
// §8 S5) as far as the six core node kinds allow. The scenario as
// written needs a concatenation source, a broadcast fan-out, a sliding
// window, and a take(n) limiter — none of which are among the six node
// kinds spec.md §4 specifies ("a representative five" plus push-source);
// those combinators live in a wider library built atop this core.
// Ordinary demand-driven recurrence is exercised with Map+PushSource,
// and Coupling is exercised separately by echoing a value through an
// inlet/outlet pair; no cycle is closed.
func runFibonacci(t *reactstream.Tunables) ([]any, error) {
	pulses := make([]any, 6)
	src := pushSource(t, pulses)

	prev2, prev1 := 0, 1
	outputs := []any{0, 1}
	fib := reactstream.NewMap(func(any) (any, error) {
		next := prev2 + prev1
		prev2, prev1 = prev1, next
		outputs = append(outputs, next)
		return next, nil
	})
	if err := reactstream.Connect(src.Node.Out(0), fib.In(0)); err != nil {
		return nil, err
	}
	sink := reactstream.NewSink(func(any) {}, nil)
	if err := reactstream.Connect(fib.Out(0), sink.In(0)); err != nil {
		return nil, err
	}

	inlet, outlet := reactstream.NewCoupling()
	var echoed any
	echoSink := reactstream.NewSink(func(e any) { echoed = e }, nil)
	if err := reactstream.Connect(outlet.Out(0), echoSink.In(0)); err != nil {
		return nil, err
	}
	echoSrc := pushSource(t, []any{outputs[len(outputs)-1]})
	if err := reactstream.Connect(echoSrc.Node.Out(0), inlet.In(0)); err != nil {
		return nil, err
	}

	if err := drainSync(src.Node, echoSrc.Node, outlet); err != nil {
		return nil, err
	}
	_ = echoed
	return outputs, nil
}

func s6Cmd(t *reactstream.Tunables) *cobra.Command {
	return &cobra.Command{
		Use:   "s6",
		Short: "push-source initial=2 max=4: unbounded request, offer(x), cancel, offer(y)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var cancelled bool
			ps := reactstream.NewPushSource(2, 4, nil, func() { cancelled = true })
			var received []any
			sink := reactstream.NewSink(func(e any) { received = append(received, e) }, nil)
			if err := reactstream.Connect(ps.Node.Out(0), sink.In(0)); err != nil {
				return err
			}
			reactstream.RunGraph(ps.Node)

			ok := ps.Offer("x")
			fmt.Println("offer(x) ->", ok)
			sink.In(0).Cancel()
			ok2 := ps.Offer("y")
			fmt.Println("offer(y) ->", ok2, "notify_on_cancel fired:", cancelled)
			return nil
		},
	}
}
