package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vaibhav938bit/neoquery/internal/config"
	"github.com/vaibhav938bit/neoquery/internal/db"
	"github.com/vaibhav938bit/neoquery/internal/errors"
	"github.com/vaibhav938bit/neoquery/internal/logging"
	"github.com/vaibhav938bit/neoquery/internal/query"
	"github.com/vaibhav938bit/neoquery/internal/schema"
)

var (
	Version = "dev"

	verbose bool
	logger  *logrus.Logger

	label    string
	props    []string
	rels     []string
	filters  []string
	excludes []string
	orderBy  []string
	fetch    []string
	skipN    int
	limitN   int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "neoquery-inspect",
	Short: "Inspect the Cypher that a declarative query spec compiles to",
	Long: `neoquery-inspect declares a node class from flags, builds a query
spec against it, and either prints the compiled statement with its
parameter table (compile) or runs it against a live server (count).`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.New(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&label, "label", "", "node label of the root class (required)")
	rootCmd.PersistentFlags().StringArrayVar(&props, "prop", nil, "property declaration name:kind (kind: string|int|float|bool|datetime|uid)")
	rootCmd.PersistentFlags().StringArrayVar(&rels, "rel", nil, "relationship declaration name:TYPE:direction:targetLabel (direction: out|in|both)")
	rootCmd.PersistentFlags().StringArrayVar(&filters, "filter", nil, "filter term field__operator=value")
	rootCmd.PersistentFlags().StringArrayVar(&excludes, "exclude", nil, "negated filter term field__operator=value")
	rootCmd.PersistentFlags().StringArrayVar(&orderBy, "order-by", nil, "ordering field, prefix with - for descending")
	rootCmd.PersistentFlags().StringArrayVar(&fetch, "fetch", nil, "relationship path to fetch, hops joined with __")
	rootCmd.PersistentFlags().IntVar(&skipN, "skip", 0, "rows to skip")
	rootCmd.PersistentFlags().IntVar(&limitN, "limit", 0, "maximum rows to return")

	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(countCmd)
}

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Print the compiled statement and parameter table without executing",
	RunE: func(cmd *cobra.Command, args []string) error {
		ns, err := buildSpec(&offlineDatabase{})
		if err != nil {
			return err
		}

		cypher, params, err := ns.CompileQuery()
		if err != nil {
			return err
		}

		fmt.Println(cypher)
		if len(params) > 0 {
			fmt.Println()
			names := make([]string, 0, len(params))
			for name := range params {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Printf("  $%s = %v\n", name, params[name])
			}
		}
		return nil
	},
}

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Compile the spec and run it in count mode against a live server",
	RunE: func(cmd *cobra.Command, args []string) error {
		loader := config.NewEnvLoader()
		if err := loader.Load(); err != nil {
			return err
		}
		if err := loader.Validate(); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		registry, _, err := buildRegistry()
		if err != nil {
			return err
		}

		database, err := db.NewNeo4jDatabase(ctx, loader.DatabaseConfig(), registry, logger)
		if err != nil {
			return err
		}
		defer database.Close(ctx)

		ns, err := buildSpecWith(database, registry)
		if err != nil {
			return err
		}

		count, err := ns.Count(ctx)
		if err != nil {
			return err
		}
		fmt.Println(count)
		return nil
	},
}

func buildSpec(database query.Database) (*query.NodeSet, error) {
	registry, _, err := buildRegistry()
	if err != nil {
		return nil, err
	}
	return buildSpecWith(database, registry)
}

func buildSpecWith(database query.Database, registry *schema.Registry) (*query.NodeSet, error) {
	cls, ok := registry.Class(label)
	if !ok {
		return nil, fmt.Errorf("--label is required")
	}

	ns, err := query.NewNodeSet(database, cls)
	if err != nil {
		return nil, err
	}

	if kw, err := parseFilterTerms(filters); err != nil {
		return nil, err
	} else if len(kw) > 0 {
		ns.Filter(kw)
	}
	if kw, err := parseFilterTerms(excludes); err != nil {
		return nil, err
	} else if len(kw) > 0 {
		ns.Exclude(kw)
	}

	if len(orderBy) > 0 {
		ns.OrderBy(orderBy...)
	}
	if len(fetch) > 0 {
		paths := make([]interface{}, len(fetch))
		for i, path := range fetch {
			paths[i] = path
		}
		ns.FetchRelations(paths...)
	}
	if skipN > 0 {
		ns.Skip(skipN)
	}
	if limitN > 0 {
		ns.Limit(limitN)
	}
	return ns, nil
}

func buildRegistry() (*schema.Registry, *schema.NodeClass, error) {
	if label == "" {
		return nil, nil, fmt.Errorf("--label is required")
	}

	registry := schema.NewRegistry()
	cls := registry.NewNodeClass(label)

	for _, decl := range props {
		name, kind, ok := strings.Cut(decl, ":")
		if !ok {
			return nil, nil, fmt.Errorf("invalid --prop %q, expected name:kind", decl)
		}
		prop, err := propertyOf(name, kind)
		if err != nil {
			return nil, nil, err
		}
		cls.AddProperty(prop)
	}

	for _, decl := range rels {
		parts := strings.Split(decl, ":")
		if len(parts) != 4 {
			return nil, nil, fmt.Errorf("invalid --rel %q, expected name:TYPE:direction:targetLabel", decl)
		}
		direction, err := directionOf(parts[2])
		if err != nil {
			return nil, nil, err
		}
		if _, ok := registry.Class(parts[3]); !ok && parts[3] != label {
			registry.NewNodeClass(parts[3])
		}
		cls.AddRelationship(parts[0], schema.NewRelationshipDef(parts[1], direction, parts[3]))
	}

	return registry, cls, nil
}

func propertyOf(name, kind string) (*schema.Property, error) {
	switch kind {
	case "string":
		return schema.NewStringProperty(name), nil
	case "int":
		return schema.NewIntegerProperty(name), nil
	case "float":
		return schema.NewFloatProperty(name), nil
	case "bool":
		return schema.NewBooleanProperty(name), nil
	case "datetime":
		return schema.NewDateTimeProperty(name), nil
	case "uid":
		return schema.NewUniqueIDProperty(name), nil
	}
	return nil, fmt.Errorf("unknown property kind %q", kind)
}

func directionOf(s string) (schema.Direction, error) {
	switch s {
	case "out":
		return schema.Outgoing, nil
	case "in":
		return schema.Incoming, nil
	case "both":
		return schema.Either, nil
	}
	return schema.Either, fmt.Errorf("unknown direction %q, expected out|in|both", s)
}

func parseFilterTerms(terms []string) (query.Kw, error) {
	kw := query.Kw{}
	for _, term := range terms {
		key, raw, ok := strings.Cut(term, "=")
		if !ok {
			return nil, fmt.Errorf("invalid filter %q, expected field__operator=value", term)
		}
		kw[key] = parseLiteral(key, raw)
	}
	return kw, nil
}

// parseLiteral guesses a value's type from its text. Membership
// operators take comma-separated lists.
func parseLiteral(key, raw string) interface{} {
	if strings.HasSuffix(key, "__in") {
		parts := strings.Split(raw, ",")
		values := make([]interface{}, len(parts))
		for i, part := range parts {
			values[i] = parseScalar(strings.TrimSpace(part))
		}
		return values
	}
	return parseScalar(raw)
}

func parseScalar(raw string) interface{} {
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

// offlineDatabase compiles statements without a server connection.
type offlineDatabase struct{}

func (o *offlineDatabase) CypherQuery(ctx context.Context, cypher string, params map[string]interface{}, resolveObjects bool) ([][]interface{}, []string, error) {
	return nil, nil, errors.DatabaseErrorf(nil, "no server configured, use compile for offline inspection")
}

func (o *offlineDatabase) IDFunctionName() string { return "elementId" }

func (o *offlineDatabase) ParseExternalID(raw string) (interface{}, error) { return raw, nil }
