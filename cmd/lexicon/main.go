// Command lexicon builds and queries LOUDS dictionary files.
//
// Usage:
//
//	lexicon build -in words.tsv -out dict.ldt [-merge] [-codec msgpack|json] [-v] [-quiet]
//	lexicon query -dict dict.ldt (-exact K | -predict P [-limit N] | -prefix Q)
//	lexicon stats -dict dict.ldt
//
// Input lines are "key<TAB>value[<TAB>value...]". Lines without a tab store
// the key with no values.
package main

import (
	"Lexicon/codec"
	"Lexicon/trie/basetrie"
	"Lexicon/trie/louds"
	"Lexicon/utils"
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
)

var (
	errUsage    = errors.New("usage: lexicon build|query|stats [flags]")
	errNotFound = errors.New("not found")
)

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := run(os.Args[1:], os.Stdout, logger); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		logger.WithError(err).Error("lexicon failed")
		os.Exit(1)
	}
}

func run(args []string, out io.Writer, logger *logrus.Logger) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "build":
		return runBuild(args[1:], logger)
	case "query":
		return runQuery(args[1:], out, logger)
	case "stats":
		return runStats(args[1:], out, logger)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}

func lookupCodec(name string) (codec.Codec, error) {
	c, ok := codec.ByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: unknown codec %q", errUsage, name)
	}
	return c, nil
}

func runBuild(args []string, logger *logrus.Logger) error {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	var (
		inPath    = fs.String("in", "", "Input TSV path")
		outPath   = fs.String("out", "", "Output dictionary path")
		merge     = fs.Bool("merge", false, "Merge values of repeated keys instead of failing")
		codecName = fs.String("codec", codec.Default.Name(), "Value codec (msgpack or json)")
		verbose   = fs.Bool("v", false, "Debug logging")
		quiet     = fs.Bool("quiet", false, "Disable the progress bar")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *inPath == "" || *outPath == "" {
		return fmt.Errorf("%w: build needs -in and -out", errUsage)
	}
	c, err := lookupCodec(*codecName)
	if err != nil {
		return err
	}
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	policy := basetrie.RejectDuplicates
	if *merge {
		policy = basetrie.MergeDuplicates
	}
	b := louds.NewBuilder[string](louds.WithLogger(logger), louds.WithDuplicatePolicy(policy))

	f, err := os.Open(*inPath)
	if err != nil {
		return err
	}
	defer f.Close()

	var in io.Reader = f
	if !*quiet {
		info, err := f.Stat()
		if err != nil {
			return err
		}
		bar := progressbar.DefaultBytes(info.Size(), "reading "+*inPath)
		defer bar.Close()
		in = io.TeeReader(f, bar)
	}
	if err := readTSV(in, b); err != nil {
		return fmt.Errorf("%s: %w", *inPath, err)
	}

	trie, err := b.Build()
	if err != nil {
		return err
	}
	if err := louds.SaveFile(*outPath, trie, c); err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"keys":   humanize.Comma(int64(trie.Len())),
		"nodes":  humanize.Comma(int64(trie.NumNodes())),
		"memory": humanize.IBytes(uint64(trie.ByteSize())),
		"codec":  c.Name(),
		"out":    *outPath,
	}).Info("dictionary written")
	return nil
}

// readTSV adds every non-empty line of r to b.
func readTSV(r io.Reader, b *louds.Builder[string]) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimRight(sc.Text(), "\r")
		if text == "" {
			continue
		}
		key, rest, hasValues := strings.Cut(text, "\t")
		var values []string
		if hasValues {
			values = strings.Split(rest, "\t")
		}
		if err := b.Add(key, values...); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
	return sc.Err()
}

func runQuery(args []string, out io.Writer, logger *logrus.Logger) error {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	var (
		dictPath  = fs.String("dict", "", "Dictionary path")
		codecName = fs.String("codec", codec.Default.Name(), "Value codec the dictionary was written with")
		exact     = fs.String("exact", "", "Print the values of this key")
		predict   = fs.String("predict", "", "Print keys starting with this prefix")
		limit     = fs.Int("limit", 0, "Maximum number of predictive results (0 means all)")
		prefix    = fs.String("prefix", "", "Print keys that are prefixes of this query")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	modes := 0
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "exact", "predict", "prefix":
			modes++
		}
	})
	if *dictPath == "" || modes != 1 {
		return fmt.Errorf("%w: query needs -dict and exactly one of -exact, -predict, -prefix", errUsage)
	}
	trie, err := loadDict(*dictPath, *codecName, logger)
	if err != nil {
		return err
	}

	var matches []louds.Match[string]
	switch {
	case isSet(fs, "exact"):
		vs := trie.ExactMatch(*exact)
		if vs == nil {
			return fmt.Errorf("%q: %w", *exact, errNotFound)
		}
		matches = append(matches, louds.Match[string]{Key: *exact, Values: vs})
	case isSet(fs, "predict"):
		for key, vs := range trie.Predictive(*predict) {
			matches = append(matches, louds.Match[string]{Key: key, Values: vs})
			if *limit > 0 && len(matches) == *limit {
				break
			}
		}
	default:
		matches = trie.CommonPrefixSearch(*prefix)
	}

	lines := utils.Map(matches, formatMatch)
	for _, line := range lines {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}

func isSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func formatMatch(m louds.Match[string]) string {
	if len(m.Values) == 0 {
		return m.Key
	}
	return m.Key + "\t" + strings.Join(m.Values, "\t")
}

func runStats(args []string, out io.Writer, logger *logrus.Logger) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	var (
		dictPath  = fs.String("dict", "", "Dictionary path")
		codecName = fs.String("codec", codec.Default.Name(), "Value codec the dictionary was written with")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dictPath == "" {
		return fmt.Errorf("%w: stats needs -dict", errUsage)
	}
	trie, err := loadDict(*dictPath, *codecName, logger)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "keys: %s\nnodes: %s\n%s",
		humanize.Comma(int64(trie.Len())), humanize.Comma(int64(trie.NumNodes())), trie.MemDetailed())
	return err
}

func loadDict(path, codecName string, logger *logrus.Logger) (*louds.Trie[string], error) {
	c, err := lookupCodec(codecName)
	if err != nil {
		return nil, err
	}
	trie, err := louds.LoadFile[string](path, c, louds.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return trie, nil
}
