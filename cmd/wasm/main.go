//go:build js && wasm

package main

import (
	"bytes"
	"context"
	"fmt"
	"syscall/js"

	"github.com/justmiles/compose-helm-parity/internal/converter"
	"github.com/justmiles/compose-helm-parity/internal/objectstore"
	"github.com/justmiles/compose-helm-parity/internal/parity"
	"github.com/justmiles/compose-helm-parity/internal/resource"
)

const bucket = "wasm"

// checkParity runs the rules against one values document and one compose
// document. Every compose block of the rules reads composeYAML; identity
// pairs are skipped because the browser has no files to compare.
func checkParity(valuesYAML, composeYAML, rulesHCL string) (string, error) {
	table, err := parity.LoadRules("rules.hcl", []byte(rulesHCL))
	if err != nil {
		return "", err
	}

	ctx := context.Background()
	store := objectstore.NewMemory()
	if err := store.Put(ctx, bucket, "values.yaml", []byte(valuesYAML)); err != nil {
		return "", err
	}
	if err := store.Put(ctx, bucket, "compose.yaml", []byte(composeYAML)); err != nil {
		return "", err
	}

	table.ValuesFile = "s3://" + bucket + "/values.yaml"
	for i := range table.RuleSets {
		table.RuleSets[i].ComposeFile = "s3://" + bucket + "/compose.yaml"
	}
	table.Identities = nil

	report, err := parity.NewChecker(&resource.Loader{Store: store}).Run(ctx, table)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := report.Write(&buf, "json"); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// promise runs fn off the JS event loop and settles a Promise with its result.
func promise(fn func() (string, error)) any {
	handler := js.FuncOf(func(this js.Value, pArgs []js.Value) any {
		resolve := pArgs[0]
		reject := pArgs[1]
		go func() {
			out, err := fn()
			if err != nil {
				errorConstructor := js.Global().Get("Error")
				reject.Invoke(errorConstructor.New(err.Error()))
				return
			}
			resolve.Invoke(out)
		}()
		return nil
	})
	promiseConstructor := js.Global().Get("Promise")
	return promiseConstructor.New(handler)
}

func invalidArgs(expected string) any {
	errorConstructor := js.Global().Get("Error")
	return errorConstructor.New(fmt.Sprintf("Invalid number of arguments. Expected %s.", expected))
}

//export checkParity
func check(this js.Value, args []js.Value) any {
	if len(args) != 3 {
		return invalidArgs("3 (valuesYAML, composeYAML, rulesHCL string)")
	}
	values, compose, rules := args[0].String(), args[1].String(), args[2].String()
	return promise(func() (string, error) {
		return checkParity(values, compose, rules)
	})
}

//export scaffoldRules
func scaffold(this js.Value, args []js.Value) any {
	if len(args) != 1 {
		return invalidArgs("1 (composeYAML string)")
	}
	compose := args[0].String()
	return promise(func() (string, error) {
		return converter.ScaffoldRules("values.yaml", "compose.yaml", []byte(compose))
	})
}

func main() {
	c := make(chan struct{})
	fmt.Println("Go WASM Initialized for compose/Helm parity checks")
	js.Global().Set("golangCheckParity", js.FuncOf(check))
	js.Global().Set("golangScaffoldRules", js.FuncOf(scaffold))
	<-c
}
