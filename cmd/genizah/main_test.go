package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/gershuni/GenizahSearch/core"
)

func TestParseMode(t *testing.T) {
	t.Run("valid modes", func(t *testing.T) {
		testCases := []struct {
			input    string
			expected core.Mode
		}{
			{"exact", core.ModeExact},
			{"variants", core.ModeVariants},
			{"extended", core.ModeExtended},
			{"maximum", core.ModeMaximum},
			{"fuzzy", core.ModeFuzzy},
			{"regex", core.ModeRegex},
		}

		for _, tc := range testCases {
			t.Run(tc.input, func(t *testing.T) {
				mode, err := parseMode(tc.input)
				require.NoError(t, err)
				assert.Equal(t, tc.expected, mode)
			})
		}
	})

	t.Run("case insensitive", func(t *testing.T) {
		mode, err := parseMode("EXACT")
		require.NoError(t, err)
		assert.Equal(t, core.ModeExact, mode)

		mode, err = parseMode("Variants")
		require.NoError(t, err)
		assert.Equal(t, core.ModeVariants, mode)
	})

	t.Run("invalid mode returns error", func(t *testing.T) {
		_, err := parseMode("approximate")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid mode")
		assert.Contains(t, err.Error(), "approximate")
	})
}

func TestSearchCommandValidation(t *testing.T) {
	app := &cli.App{
		Name: "genizah",
		Commands: []*cli.Command{
			{
				Name:   "search",
				Action: searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "mode",
						Value: "variants",
					},
					&cli.IntFlag{
						Name: "gap",
					},
					&cli.IntFlag{
						Name: "distance",
					},
					&cli.IntFlag{
						Name:  "limit",
						Value: 20,
					},
				},
			},
		},
	}

	t.Run("missing query fails", func(t *testing.T) {
		err := app.Run([]string{"genizah", "search"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "query text is required")
	})

	t.Run("whitespace query fails", func(t *testing.T) {
		err := app.Run([]string{"genizah", "search", "  "})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "query text is required")
	})

	t.Run("invalid mode fails before opening anything", func(t *testing.T) {
		err := app.Run([]string{"genizah", "search", "--mode", "bogus", "שלום"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid mode")
	})
}

func TestAnalyzeCommandValidation(t *testing.T) {
	app := &cli.App{
		Name: "genizah",
		Commands: []*cli.Command{
			{
				Name:   "analyze",
				Action: analyzeCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "mode",
						Value: "variants",
					},
				},
			},
		},
	}

	t.Run("missing file argument fails", func(t *testing.T) {
		err := app.Run([]string{"genizah", "analyze"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "source file")
	})

	t.Run("extra arguments fail", func(t *testing.T) {
		err := app.Run([]string{"genizah", "analyze", "a.txt", "b.txt"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "source file")
	})

	t.Run("invalid mode fails before reading the file", func(t *testing.T) {
		err := app.Run([]string{"genizah", "analyze", "--mode", "bogus", "a.txt"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid mode")
	})

	t.Run("unreadable file fails", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "missing.txt")
		err := app.Run([]string{"genizah", "analyze", missing})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read source text")
	})
}

func TestResolveCommandValidation(t *testing.T) {
	app := &cli.App{
		Name: "genizah",
		Commands: []*cli.Command{
			{
				Name:   "resolve",
				Action: resolveCommand,
			},
		},
	}

	err := app.Run([]string{"genizah", "resolve"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shelfmark")
}

func TestShowCommandValidation(t *testing.T) {
	app := &cli.App{
		Name: "genizah",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Action: showCommand,
			},
		},
	}

	err := app.Run([]string{"genizah", "show"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "system id")
}

func TestFormatOffsets(t *testing.T) {
	testCases := []struct {
		name     string
		offsets  []int
		expected string
	}{
		{"empty", nil, ""},
		{"single", []int{3}, "3"},
		{"contiguous run", []int{3, 4, 5, 6, 7}, "3-7"},
		{"pair", []int{3, 4}, "3-4"},
		{"mixed", []int{0, 1, 2, 5, 9, 10}, "0-2 5 9-10"},
		{"disjoint singles", []int{1, 3, 5}, "1 3 5"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, formatOffsets(tc.offsets))
		})
	}
}

func TestSetupLogger(t *testing.T) {
	t.Run("valid log levels", func(t *testing.T) {
		testCases := []struct {
			input    string
			expected slog.Level
		}{
			{"debug", slog.LevelDebug},
			{"info", slog.LevelInfo},
			{"warn", slog.LevelWarn},
			{"error", slog.LevelError},
		}

		for _, tc := range testCases {
			t.Run(tc.input, func(t *testing.T) {
				app := &cli.App{
					Name: "test",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:  "log-level",
							Value: tc.input,
						},
					},
					Before: setupLogger,
					Action: func(c *cli.Context) error {
						return nil
					},
				}

				err := app.Run([]string{"test", "--log-level", tc.input})
				require.NoError(t, err)
			})
		}
	})

	t.Run("case insensitive log levels", func(t *testing.T) {
		testCases := []string{
			"DEBUG",
			"Info",
			"WaRn",
			"ERROR",
		}

		for _, tc := range testCases {
			t.Run(tc, func(t *testing.T) {
				app := &cli.App{
					Name: "test",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:  "log-level",
							Value: "warn",
						},
					},
					Before: setupLogger,
					Action: func(c *cli.Context) error {
						return nil
					},
				}

				err := app.Run([]string{"test", "--log-level", tc})
				require.NoError(t, err)
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		app := &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "log-level",
					Value: "warn",
				},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error {
				return nil
			},
		}

		err := app.Run([]string{"test", "--log-level", "loud"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
		assert.Contains(t, err.Error(), "loud")
	})

	t.Run("default log level is warn", func(t *testing.T) {
		app := &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "log-level",
					Value: "warn",
				},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error {
				assert.Equal(t, "warn", c.String("log-level"))
				return nil
			},
		}

		err := app.Run([]string{"test"})
		require.NoError(t, err)
	})
}

func TestMain(m *testing.M) {
	code := m.Run()
	os.Exit(code)
}
