package main

import (
	"errors"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/xgrep/xgrep/internal/config"
	"github.com/xgrep/xgrep/internal/engineerr"
)

func TestParseFuzzyBareDigits(t *testing.T) {
	var spec config.FuzzySpec
	require.NoError(t, parseFuzzy("2", &spec))
	require.True(t, spec.Enabled)
	require.False(t, spec.Best)
	require.Equal(t, 2, spec.MaxCost)
	require.True(t, spec.AllowIns && spec.AllowDel && spec.AllowSub)
}

func TestParseFuzzyBestPrefix(t *testing.T) {
	var spec config.FuzzySpec
	require.NoError(t, parseFuzzy("best1", &spec))
	require.True(t, spec.Best)
	require.Equal(t, 1, spec.MaxCost)
}

func TestParseFuzzyBestWithNoDigitsDefaultsToOne(t *testing.T) {
	var spec config.FuzzySpec
	require.NoError(t, parseFuzzy("best", &spec))
	require.True(t, spec.Best)
	require.Equal(t, 1, spec.MaxCost)
}

func TestParseFuzzyInvalidDigitsErrors(t *testing.T) {
	var spec config.FuzzySpec
	require.Error(t, parseFuzzy("bestxyz", &spec))
}

func TestParseIntPairBareMax(t *testing.T) {
	lo, hi, err := parseIntPair("5")
	require.NoError(t, err)
	require.Equal(t, 0, lo)
	require.Equal(t, 5, hi)
}

func TestParseIntPairMinMax(t *testing.T) {
	lo, hi, err := parseIntPair("2,5")
	require.NoError(t, err)
	require.Equal(t, 2, lo)
	require.Equal(t, 5, hi)
}

func TestParseIntPairOpenMin(t *testing.T) {
	lo, hi, err := parseIntPair(",5")
	require.NoError(t, err)
	require.Equal(t, 0, lo)
	require.Equal(t, 5, hi)
}

func TestParseIntPairInvalid(t *testing.T) {
	_, _, err := parseIntPair("abc")
	require.Error(t, err)
}

func TestParseSortKeyPlain(t *testing.T) {
	key, rev := parseSortKey("size")
	require.Equal(t, config.SortSize, key)
	require.False(t, rev)
}

func TestParseSortKeyReversed(t *testing.T) {
	key, rev := parseSortKey("rsize")
	require.Equal(t, config.SortSize, key)
	require.True(t, rev)
}

func TestParseSortKeyBareRIsNotReverse(t *testing.T) {
	key, rev := parseSortKey("r")
	require.Equal(t, config.SortName, key)
	require.False(t, rev)
}

func TestParseSortKeyUnknownDefaultsToName(t *testing.T) {
	key, rev := parseSortKey("bogus")
	require.Equal(t, config.SortName, key)
	require.False(t, rev)
}

func TestSplitCommaTrimsAndDropsEmpty(t *testing.T) {
	require.Equal(t, []string{"go", "py"}, splitComma("go, ,py,"))
}

func TestApplyEnvReadsGrepColorFallback(t *testing.T) {
	t.Setenv("GREP_PATH", "/patterns")
	t.Setenv("GREP_COLORS", "")
	t.Setenv("GREP_COLOR", "01;31")

	cfg := config.Default()
	applyEnv(cfg)
	require.Equal(t, "/patterns", cfg.GrepPath)
	require.Equal(t, "mt=01;31", cfg.Colors)
}

func TestApplyEnvPrefersGrepColors(t *testing.T) {
	t.Setenv("GREP_COLORS", "fn=35")
	t.Setenv("GREP_COLOR", "01;31")

	cfg := config.Default()
	applyEnv(cfg)
	require.Equal(t, "fn=35", cfg.Colors)
}

func TestValueOrTrueEnablesBareBoolFlag(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Bool("hidden", false, "")
	f := fs.Lookup("hidden")
	require.Equal(t, "true", valueOrTrue(f, ""))
}

func TestValueOrTruePassesThroughNonBool(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("label", "", "")
	f := fs.Lookup("label")
	require.Equal(t, "stdin", valueOrTrue(f, "stdin"))
}

func TestAsEngineErrNeedsErrorChain(t *testing.T) {
	base := engineerr.Usage(errors.New("bad pattern"))
	flattened := errors.New("context: " + base.Error())
	require.Nil(t, asEngineErr(flattened))
	require.NotNil(t, asEngineErr(base))
}

func TestApplyFlagsPopulatesPatternsAndFlags(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	bindFlags(fs)
	require.NoError(t, fs.Parse([]string{"-e", "foo", "-i", "-w"}))

	cfg := config.Default()
	require.NoError(t, applyFlags(fs, cfg))
	require.Equal(t, []string{"foo"}, cfg.Patterns)
	require.True(t, cfg.Flags.IgnoreCase)
	require.True(t, cfg.Flags.WordBoundary)
}

func TestApplyFlagsSymlinkPolicyDispatch(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	bindFlags(fs)
	require.NoError(t, fs.Parse([]string{"-R"}))

	cfg := config.Default()
	require.NoError(t, applyFlags(fs, cfg))
	require.Equal(t, config.SymlinkAll, cfg.FollowSymlinks)
}

func TestApplyFlagsContextShorthandSetsBoth(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	bindFlags(fs)
	require.NoError(t, fs.Parse([]string{"-C", "3"}))

	cfg := config.Default()
	require.NoError(t, applyFlags(fs, cfg))
	require.Equal(t, 3, cfg.Before)
	require.Equal(t, 3, cfg.After)
}

func TestApplyFlagsFilenameDispatch(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	bindFlags(fs)
	require.NoError(t, fs.Parse([]string{"-h"}))

	cfg := config.Default()
	require.NoError(t, applyFlags(fs, cfg))
	require.Equal(t, config.ShowFilenameNever, cfg.ShowFilename)
}
