package main

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-graphviz"
	"github.com/kelseyhightower/envconfig"
	"github.com/pterm/pterm"
	flag "github.com/spf13/pflag"

	"github.com/parlex-go/parlex"
)

// config carries the environment-driven settings; flags override the
// per-invocation ones.
type config struct {
	CacheDir string `envconfig:"cache_dir"`
	LogFile  string `envconfig:"log_file" default:"stderr"`
	LogLevel string `envconfig:"log_level" default:"info"`
}

type command struct {
	fs *flag.FlagSet

	help        bool
	grammarPath string
	outPath     string
	dotPath     string
	probe       string
	noCache     bool
	validate    bool
}

func newCommand() *command {
	c := &command{
		fs: flag.NewFlagSet("parlex", flag.ContinueOnError),
	}

	c.fs.StringVarP(&c.grammarPath, "grammar", "g", "", "YAML lexical grammar to compile")
	c.fs.StringVarP(&c.outPath, "out", "o", "", "Output artifact file")
	c.fs.StringVar(&c.dotPath, "dot", "", "Render the DFA to this SVG file")
	c.fs.StringVar(&c.probe, "probe", "", "Recognize this input with the built tables and print the lexeme")
	c.fs.BoolVar(&c.noCache, "no-cache", false, "Skip the artifact cache")
	c.fs.BoolVar(&c.validate, "validate", false, "Re-check table invariants after the build")
	c.fs.BoolVarP(&c.help, "help", "h", false, "Prints help message")

	return c
}

func (c *command) printHelp() {
	pterm.DefaultBasicText.Println("parlex compiles a lexical grammar into parallel-scan lexer tables.")
	pterm.Println()
	pterm.DefaultBasicText.Println("Flags:")
	c.fs.PrintDefaults()
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	c := newCommand()
	if err := c.fs.Parse(args); err != nil {
		pterm.Error.Printfln("Can not parse flags: %s", err)
		return 1
	}
	if c.help {
		c.printHelp()
		return 0
	}
	if c.grammarPath == "" {
		pterm.Error.Println("--grammar is required")
		return 1
	}

	var conf config
	if err := envconfig.Process("parlex", &conf); err != nil {
		pterm.Error.Printfln("Can not read environment: %s", err)
		return 1
	}
	logger, err := parlex.NewLogger(&parlex.LoggingConfig{Logfile: conf.LogFile, Level: conf.LogLevel})
	if err != nil {
		pterm.Error.Printfln("Can not create logger: %s", err)
		return 1
	}
	defer logger.Sync() //nolint:errcheck

	grammar, err := parlex.LoadGrammarFile(c.grammarPath)
	if err != nil {
		pterm.Error.Printfln("Can not load grammar: %s", err)
		return 1
	}

	compileSpinner, _ := pterm.DefaultSpinner.Start("Compiling grammar...")
	dfa, mapping, err := grammar.Compile()
	if err != nil {
		compileSpinner.Fail("Can not compile grammar: ", err)
		return 1
	}
	compileSpinner.Success(fmt.Sprintf("Grammar compiled: %d DFA states, %d tokens", dfa.NumStates(), mapping.NumTokens()))

	if c.dotPath != "" {
		f, err := os.Create(c.dotPath)
		if err != nil {
			pterm.Error.Printfln("Can not create dot output %s: %s", c.dotPath, err)
			return 1
		}
		if err := dfa.RenderGraph(f, graphviz.SVG); err != nil {
			pterm.Error.Printfln("Can not render DFA graph: %s", err)
			return 1
		}
		if err := f.Close(); err != nil {
			pterm.Error.Printfln("Can not write dot output: %s", err)
			return 1
		}
	}

	var cache *parlex.ArtifactCache
	var fingerprint []byte
	if conf.CacheDir != "" && !c.noCache {
		fingerprint, err = grammar.Fingerprint()
		if err != nil {
			pterm.Error.Printfln("Can not fingerprint grammar: %s", err)
			return 1
		}
		cache, err = parlex.OpenArtifactCache(conf.CacheDir)
		if err != nil {
			pterm.Error.Printfln("Can not open artifact cache: %s", err)
			return 1
		}
		defer cache.Close()
	}

	var lexer *parlex.ParallelLexer
	if cache != nil {
		lexer, err = cache.Get(fingerprint)
		if err != nil {
			logger.Warnf("artifact cache read failed, rebuilding: %s", err)
		}
	}

	if lexer != nil {
		pterm.Success.Println("Merge table loaded from cache")
	} else {
		buildSpinner, _ := pterm.DefaultSpinner.Start("Generating merge table...")
		lexer, err = parlex.Build(dfa,
			parlex.WithLogger(logger),
			parlex.WithProgress(func(done, total int) {
				buildSpinner.UpdateText(fmt.Sprintf("Generating merge table... %d/%d parallel states", done, total))
			}))
		if err != nil {
			buildSpinner.Fail("Can not build lexer tables: ", err)
			return 1
		}
		buildSpinner.Success(fmt.Sprintf("Merge table generated: %d parallel states", lexer.NumStates()))

		if cache != nil {
			if err := cache.Put(fingerprint, lexer); err != nil {
				logger.Warnf("artifact cache write failed: %s", err)
			}
		}
	}

	if c.validate {
		validateSpinner, _ := pterm.DefaultSpinner.Start("Validating tables...")
		if err := lexer.Validate(context.Background()); err != nil {
			validateSpinner.Fail("Table validation failed: ", err)
			return 1
		}
		validateSpinner.Success("Tables validated")
	}

	lexer.DumpSizes(os.Stdout)
	mapping.PrintTokens(os.Stdout)

	if c.probe != "" {
		if lx := lexer.Recognize([]byte(c.probe)); lx != nil {
			pterm.Success.Printfln("%q recognizes as %s", c.probe, lx.Name)
		} else {
			pterm.Warning.Printfln("%q recognizes as no lexeme", c.probe)
		}
	}

	if c.outPath != "" {
		f, err := os.Create(c.outPath)
		if err != nil {
			pterm.Error.Printfln("Can not open output file %s: %s", c.outPath, err)
			return 1
		}
		if err := lexer.Encode(f); err != nil {
			pterm.Error.Printfln("Can not write artifact to %s: %s", c.outPath, err)
			return 1
		}
		if err := f.Close(); err != nil {
			pterm.Error.Printfln("Can not write artifact to %s: %s", c.outPath, err)
			return 1
		}
		pterm.Success.Printfln("Artifact written to %s", c.outPath)
	}

	return 0
}
