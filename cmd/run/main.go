package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/karmakrafts/kWire-sub000/abi"
	"github.com/karmakrafts/kWire-sub000/alloc"
	"github.com/karmakrafts/kWire-sub000/arena"
	"github.com/karmakrafts/kWire-sub000/argbuf"
	"github.com/karmakrafts/kWire-sub000/dispatch"
	"github.com/karmakrafts/kWire-sub000/native/wazerocall"
	"github.com/karmakrafts/kWire-sub000/ptr"
)

func main() {
	var (
		describe = flag.Bool("describe", false, "Print layout tables for the sample type set and exit")
		wasmFile = flag.String("wasm", "", "Path to a core wasm module")
		funcName = flag.String("func", "", "Exported function to call")
		argsStr  = flag.String("args", "", "Comma-separated int32 arguments")
		list     = flag.Bool("list", false, "List exported functions and exit")
		verbose  = flag.Bool("v", false, "Enable debug logging")
	)
	flag.Parse()

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		arena.SetLogger(logger)
		dispatch.SetLogger(logger)
		wazerocall.SetLogger(logger)
	}

	if *describe {
		if err := describeLayouts(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *wasmFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: run -describe")
		fmt.Fprintln(os.Stderr, "       run -wasm <file.wasm> -list")
		fmt.Fprintln(os.Stderr, "       run -wasm <file.wasm> -func name [-args 1,2,...]")
		os.Exit(1)
	}

	if err := run(*wasmFile, *funcName, *argsStr, *list); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// sampleTypes is the descriptor set printed by -describe. It exercises
// natural, packed, and nested layouts.
func sampleTypes() []*abi.Type {
	point := abi.Struct("point",
		abi.Field{Name: "x", Type: abi.F32},
		abi.Field{Name: "y", Type: abi.F32},
	)
	return []*abi.Type{
		abi.Struct("mixed",
			abi.Field{Name: "tag", Type: abi.U8},
			abi.Field{Name: "id", Type: abi.S32},
			abi.Field{Name: "value", Type: abi.F64},
		),
		abi.PackedStruct("mixed_packed", 1,
			abi.Field{Name: "tag", Type: abi.U8},
			abi.Field{Name: "id", Type: abi.S32},
			abi.Field{Name: "value", Type: abi.F64},
		),
		abi.Struct("nested",
			abi.Field{Name: "origin", Type: point},
			abi.Field{Name: "extent", Type: point},
			abi.Field{Name: "data", Type: abi.PointerTo(abi.U8)},
		),
	}
}

func describeLayouts() error {
	calc := abi.NewCalculator()
	for _, t := range sampleTypes() {
		layout, err := calc.Calculate(t)
		if err != nil {
			return err
		}
		fmt.Printf("%s (size=%d align=%d)\n", t.Name, layout.Size, layout.Align)
		for i, f := range t.Fields {
			fmt.Printf("  %-8s %-12s offset=%d\n", f.Name, f.Type.Name, layout.FieldOffsets[i])
		}
		fmt.Println()
	}
	return nil
}

func run(wasmFile, funcName, argsStr string, listOnly bool) error {
	ctx := context.Background()

	data, err := os.ReadFile(wasmFile)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	eng := wazerocall.NewEngine(ctx)
	defer eng.Close(ctx)

	targets, err := eng.LoadModule(ctx, data)
	if err != nil {
		return fmt.Errorf("load module: %w", err)
	}

	fmt.Printf("Module: %s\n", wasmFile)
	fmt.Printf("Exported functions: %d\n", len(targets))
	if listOnly || funcName == "" {
		for name, target := range targets {
			fmt.Printf("  %s @ %#x\n", name, uintptr(target))
		}
		return nil
	}

	target, ok := targets[funcName]
	if !ok {
		return fmt.Errorf("function %q not exported", funcName)
	}

	args, err := parseArgs(argsStr)
	if err != nil {
		return err
	}

	a := arena.New(alloc.Default(), 0)
	defer a.Close()
	scope := a.Scope()
	defer scope.Close()

	buf, err := argbuf.Acquire()
	if err != nil {
		return fmt.Errorf("acquire buffer: %w", err)
	}
	defer buf.Release()
	defer argbuf.Shutdown()

	// Stage the parsed values through scope-owned native memory, then
	// commit them into the argument buffer.
	sig := &dispatch.Signature{Result: abi.S32}
	for _, v := range args {
		slot, err := scope.AllocateType(abi.S32)
		if err != nil {
			return fmt.Errorf("stage argument: %w", err)
		}
		ptr.Store[int32](slot, v)
		if err := buf.PutInt32(ptr.Load[int32](slot)); err != nil {
			return fmt.Errorf("commit argument: %w", err)
		}
		sig.Params = append(sig.Params, abi.S32)
	}

	d := dispatch.NewDispatcher(eng)
	result, err := d.Call(target, sig, buf)
	if err != nil {
		return fmt.Errorf("dispatch: %w", err)
	}

	fmt.Printf("%s(%s) = %v\n", funcName, argsStr, result)
	return nil
}

func parseArgs(argsStr string) ([]int32, error) {
	if argsStr == "" {
		return nil, nil
	}
	parts := strings.Split(argsStr, ",")
	args := make([]int32, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(p), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", p, err)
		}
		args = append(args, int32(v))
	}
	return args, nil
}
