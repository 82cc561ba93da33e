package file

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/gocty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func read(filename string) (*hcl.File, hcl.Diagnostics) {
	src, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, hcl.Diagnostics{
				{
					Severity: hcl.DiagError,
					Summary:  "Request file not found",
					Detail:   fmt.Sprintf("The request file %s does not exist.", filename),
				},
			}
		}
		return nil, hcl.Diagnostics{
			{
				Severity: hcl.DiagError,
				Summary:  "Failed to read request file",
				Detail:   fmt.Sprintf("Can't read %s: %s.", filename, err),
			},
		}
	}
	return hclsyntax.ParseConfig(src, filename, hcl.Pos{Line: 1, Column: 1})
}

func writeDiags(files map[string]*hcl.File, diags hcl.Diagnostics) {
	wr := hcl.NewDiagnosticTextWriter(
		os.Stdout,
		files, // the parser's file cache, for source snippets
		78,    // wrapping width
		false, // generate colored/highlighted output
	)
	wr.WriteDiagnostics(diags)
}

func makeContext(vars map[string]cty.Value) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"locals": cty.ObjectVal(vars),
		},
		Functions: map[string]function.Function{
			"env":    makeEnvFunc(),
			"read":   makeFileReadFunc(),
			"json":   makeJSONFunc(),
			"tmpl":   makeTemplateFunc(),
			"title":  makeTitleFunc(),
			"uuid":   makeUUIDFunc(),
			"nanoid": makeNanoIDFunc(),
		},
	}
}

/*** Functions ***/

func makeFileReadFunc() function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{
				Name:        "read",
				Type:        cty.String,
				AllowMarked: true,
			},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			pathArg, _ := args[0].Unmark()
			path := pathArg.AsString()
			if strings.HasPrefix(path, "~/") {
				home, _ := os.UserHomeDir()
				path = filepath.Join(home, path[2:])
			}
			val, err := os.ReadFile(path)
			if err != nil {
				return cty.StringVal(""), err
			}
			return cty.StringVal(string(val)), nil
		},
	})
}

func makeEnvFunc() function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{
				Name:        "env",
				Type:        cty.String,
				AllowMarked: true,
			},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			envArg, _ := args[0].Unmark()
			val := os.Getenv(envArg.AsString())
			return cty.StringVal(val), nil
		},
	})
}

func makeJSONFunc() function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{
				Name:             "str",
				Type:             cty.String,
				AllowDynamicType: true,
			},
		},
		Type: func(args []cty.Value) (cty.Type, error) {
			if !args[0].IsKnown() {
				return cty.DynamicPseudoType, nil
			}

			jsonStr := args[0].AsString()
			jsonType, err := ctyjson.ImpliedType([]byte(jsonStr))
			if err != nil {
				return cty.DynamicPseudoType, err
			}

			return jsonType, nil
		},
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			jsonStr := args[0].AsString()

			jsonType, err := ctyjson.ImpliedType([]byte(jsonStr))
			if err != nil {
				return cty.DynamicVal, fmt.Errorf("invalid JSON: %s", err)
			}

			val, err := ctyjson.Unmarshal([]byte(jsonStr), jsonType)
			if err != nil {
				return cty.DynamicVal, fmt.Errorf("failed to parse JSON: %s", err)
			}

			return val, nil
		},
	})
}

func makeTitleFunc() function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{
				Name: "str",
				Type: cty.String,
			},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			return cty.StringVal(cases.Title(language.English).String(args[0].AsString())), nil
		},
	})
}

func makeUUIDFunc() function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{},
		Type:   function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			return cty.StringVal(uuid.NewString()), nil
		},
	})
}

func makeNanoIDFunc() function.Function {
	return function.New(&function.Spec{
		VarParam: &function.Parameter{
			Name: "args",
			Type: cty.DynamicPseudoType,
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			lengthInt := 21
			var alphabet string

			if len(args) > 0 && !args[0].IsNull() {
				if err := gocty.FromCtyValue(args[0], &lengthInt); err != nil {
					return cty.NilVal, err
				}
			}
			if len(args) > 1 && !args[1].IsNull() {
				alphabet = args[1].AsString()
			}

			if alphabet != "" {
				id, err := gonanoid.Generate(alphabet, lengthInt)
				if err != nil {
					return cty.NilVal, err
				}
				return cty.StringVal(id), nil
			}

			id, err := gonanoid.New(lengthInt)
			if err != nil {
				return cty.NilVal, err
			}
			return cty.StringVal(id), nil
		},
	})
}

func makeTemplateFunc() function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{
				Name: "template",
				Type: cty.String,
			},
			{
				Name:             "values",
				Type:             cty.DynamicPseudoType,
				AllowDynamicType: true,
			},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			template := args[0].AsString()
			valuesArg := args[1]

			// named or indexed template
			switch {
			case valuesArg.Type().IsListType() || valuesArg.Type().IsTupleType():
				return replaceIndexedPlaceholders(template, valuesArg)

			case valuesArg.Type().IsMapType() || valuesArg.Type().IsObjectType():
				return replaceNamedPlaceholders(template, valuesArg)

			default:
				return cty.NilVal, fmt.Errorf("values must be a list or map, got %s", valuesArg.Type().FriendlyName())
			}
		},
	})
}

func replaceIndexedPlaceholders(template string, values cty.Value) (cty.Value, error) {
	valuesList := values.AsValueSlice()

	re := regexp.MustCompile(`\{\{\$(\d+)\}\}`)
	result := re.ReplaceAllStringFunc(template, func(match string) string {
		indexStr := re.FindStringSubmatch(match)[1]
		index, _ := strconv.Atoi(indexStr)

		// keep placeholder if index out of bounds
		if index >= len(valuesList) {
			return match
		}

		val := valuesList[index]
		if val.Type() == cty.String {
			return val.AsString()
		}

		jsonVal := ctyjson.SimpleJSONValue{Value: val}
		jsonBytes, _ := jsonVal.MarshalJSON()
		return string(jsonBytes)
	})

	return cty.StringVal(result), nil
}

func replaceNamedPlaceholders(template string, values cty.Value) (cty.Value, error) {
	valuesMap := values.AsValueMap()

	re := regexp.MustCompile(`\{\{([a-zA-Z_]\w*)\}\}`)
	result := re.ReplaceAllStringFunc(template, func(match string) string {
		name := re.FindStringSubmatch(match)[1]

		val, exists := valuesMap[name]
		// keep placeholder if not found
		if !exists {
			return match
		}

		if val.Type() == cty.String {
			return val.AsString()
		}

		jsonVal := ctyjson.SimpleJSONValue{Value: val}
		jsonBytes, _ := jsonVal.MarshalJSON()
		return string(jsonBytes)
	})

	return cty.StringVal(result), nil
}
