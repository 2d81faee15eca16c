package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/erraggy/xmltools"
	"github.com/erraggy/xmltools/internal/mcpserver"
	"github.com/erraggy/xmltools/parser"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "version", "-v", "--version":
		fmt.Printf("xmltools v%s\n", xmltools.Version())
	case "help", "-h", "--help":
		printUsage()
	case "parse":
		if err := handleParse(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "string":
		if err := handleString(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "mcp":
		if err := mcpserver.Run(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		if suggestion := suggestCommand(command); suggestion != "" {
			fmt.Fprintf(os.Stderr, "Did you mean '%s'?\n", suggestion)
		}
		fmt.Fprintln(os.Stderr)
		printUsage()
		os.Exit(1)
	}
}

// entityFlags collects repeated --entity name=value flags.
type entityFlags map[string]string

func (e entityFlags) String() string {
	pairs := make([]string, 0, len(e))
	for name, value := range e {
		pairs = append(pairs, name+"="+value)
	}
	return strings.Join(pairs, ",")
}

func (e entityFlags) Set(v string) error {
	name, value, ok := strings.Cut(v, "=")
	if !ok || name == "" {
		return fmt.Errorf("entity must be name=value, got %q", v)
	}
	e[name] = value
	return nil
}

// docFlags contains the flags shared by the parse and string commands
type docFlags struct {
	policyPath string
	maxDepth   int
	allowDTD   bool
	noExternal bool
	stats      bool
	query      string
	entities   entityFlags
}

func addDocFlags(fs *flag.FlagSet) *docFlags {
	flags := &docFlags{entities: make(entityFlags)}

	fs.StringVar(&flags.policyPath, "policy", "", "load validation policy from a YAML file")
	fs.IntVar(&flags.maxDepth, "max-depth", 0, "override the maximum nesting depth")
	fs.BoolVar(&flags.allowDTD, "allow-dtd", false, "allow DTD processing (external entity declarations)")
	fs.BoolVar(&flags.noExternal, "no-external", false, "disable external entity resolution")
	fs.BoolVar(&flags.stats, "stats", false, "print document statistics after parsing")
	fs.StringVar(&flags.query, "query", "", "print the text content at a slash-separated path instead of the tree")
	fs.Var(flags.entities, "entity", "register a custom entity as name=value (may be repeated)")

	return flags
}

// buildOptions translates command-line flags into parse options.
func buildOptions(flags *docFlags) ([]parser.Option, error) {
	policy := parser.DefaultPolicy()
	if flags.policyPath != "" {
		loaded, err := parser.LoadPolicyFile(flags.policyPath)
		if err != nil {
			return nil, fmt.Errorf("loading policy: %w", err)
		}
		policy = loaded
	}
	if flags.maxDepth > 0 {
		policy.MaxDepth = flags.maxDepth
	}
	if flags.allowDTD {
		policy.AllowDTD = true
	}

	opts := []parser.Option{
		parser.WithPolicy(policy),
		parser.WithExternalEntities(!flags.noExternal),
	}
	for name, value := range flags.entities {
		opts = append(opts, parser.WithEntity(name, value))
	}
	return opts, nil
}

// printResult writes the requested view of a parse result to stdout.
func printResult(result *parser.ParseResult, flags *docFlags, source string) {
	if flags.query != "" {
		fmt.Println(result.Root.Query(flags.query))
		return
	}

	fmt.Printf("XML Document Parser\n")
	fmt.Printf("===================\n\n")
	fmt.Printf("xmltools version: %s\n", xmltools.Version())
	fmt.Printf("Document: %s\n", source)
	fmt.Printf("Source Size: %d bytes\n\n", result.SourceSize)
	fmt.Print(result.Root.Render())

	if flags.stats {
		fmt.Printf("\n%s", result.Stats.Format())
	}
}

func setupParseFlags() (*flag.FlagSet, *docFlags) {
	fs := flag.NewFlagSet("parse", flag.ContinueOnError)
	flags := addDocFlags(fs)

	fs.Usage = func() {
		output := fs.Output()
		_, _ = fmt.Fprintf(output, "Usage: xmltools parse [flags] <file>\n\n")
		_, _ = fmt.Fprintf(output, "Parse and validate an XML document file.\n\n")
		_, _ = fmt.Fprintf(output, "Flags:\n")
		fs.PrintDefaults()
		_, _ = fmt.Fprintf(output, "\nExamples:\n")
		_, _ = fmt.Fprintf(output, "  xmltools parse config.xml\n")
		_, _ = fmt.Fprintf(output, "  xmltools parse --stats --max-depth 10 config.xml\n")
		_, _ = fmt.Fprintf(output, "  xmltools parse --policy policy.yaml config.xml\n")
		_, _ = fmt.Fprintf(output, "  xmltools parse --query server/host config.xml\n")
		_, _ = fmt.Fprintf(output, "  xmltools parse --entity company=ACME --entity year=2026 doc.xml\n")
	}

	return fs, flags
}

func handleParse(args []string) error {
	fs, flags := setupParseFlags()

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("parse command requires exactly one file path")
	}

	opts, err := buildOptions(flags)
	if err != nil {
		return err
	}
	opts = append(opts, parser.WithFilePath(fs.Arg(0)))

	result, err := parser.ParseWithOptions(opts...)
	if err != nil {
		return err
	}

	printResult(result, flags, fs.Arg(0))
	return nil
}

func setupStringFlags() (*flag.FlagSet, *docFlags) {
	fs := flag.NewFlagSet("string", flag.ContinueOnError)
	flags := addDocFlags(fs)

	fs.Usage = func() {
		output := fs.Output()
		_, _ = fmt.Fprintf(output, "Usage: xmltools string [flags] <xml>\n\n")
		_, _ = fmt.Fprintf(output, "Parse and validate an XML document given as a literal argument.\n\n")
		_, _ = fmt.Fprintf(output, "Flags:\n")
		fs.PrintDefaults()
		_, _ = fmt.Fprintf(output, "\nExamples:\n")
		_, _ = fmt.Fprintf(output, "  xmltools string '<config><host>db1</host></config>'\n")
		_, _ = fmt.Fprintf(output, "  xmltools string --query host '<config><host>db1</host></config>'\n")
		_, _ = fmt.Fprintf(output, "  xmltools string --stats '<a><b/><b/></a>'\n")
	}

	return fs, flags
}

func handleString(args []string) error {
	fs, flags := setupStringFlags()

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("string command requires exactly one XML argument")
	}

	opts, err := buildOptions(flags)
	if err != nil {
		return err
	}
	opts = append(opts, parser.WithContent(fs.Arg(0)))

	result, err := parser.ParseWithOptions(opts...)
	if err != nil {
		return err
	}

	printResult(result, flags, "<inline>")
	return nil
}

// commands lists every recognised command for typo suggestions.
var commands = []string{"parse", "string", "mcp", "version", "help"}

// suggestCommand returns the closest known command within edit distance 2,
// or an empty string when nothing is close enough.
func suggestCommand(input string) string {
	best := ""
	bestDist := 3
	for _, cmd := range commands {
		if d := editDistance(input, cmd); d < bestDist {
			best = cmd
			bestDist = d
		}
	}
	return best
}

func editDistance(a, b string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func printUsage() {
	fmt.Println(`xmltools - Hardened XML Parsing Tools

Usage:
  xmltools <command> [options]

Commands:
  parse       Parse and validate an XML document file
  string      Parse and validate an XML document given as an argument
  mcp         Run the MCP server over stdio
  version     Show version information
  help        Show this help message

Examples:
  xmltools parse config.xml
  xmltools parse --stats --policy policy.yaml config.xml
  xmltools parse --query server/host config.xml
  xmltools string '<config><host>db1</host></config>'

Run 'xmltools <command> --help' for more information on a command.`)
}
