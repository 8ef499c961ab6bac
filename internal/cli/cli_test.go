package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommands(t *testing.T) {
	root := NewRootCommand()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"start", "migrate", "seed", "routes", "worker"}, names)

	migrate, _, err := root.Find([]string{"migrate", "down"})
	require.NoError(t, err)
	assert.NotNil(t, migrate.Flags().Lookup("steps"))
	assert.NotNil(t, migrate.Flags().Lookup("all"))
}

func TestPrintRoutesSorted(t *testing.T) {
	cmd := newRoutesCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)

	routes := []*echo.Route{
		{Method: "POST", Path: "/orders"},
		{Method: "GET", Path: "/customers"},
		{Method: "GET", Path: "/orders"},
	}
	require.NoError(t, printRoutes(cmd, routes))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"METHOD", "PATH"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"GET", "/customers"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"GET", "/orders"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"POST", "/orders"}, strings.Fields(lines[3]))
}

func TestMigrateSubcommands(t *testing.T) {
	migrate, _, err := NewRootCommand().Find([]string{"migrate"})
	require.NoError(t, err)

	var names []string
	for _, c := range migrate.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"up", "down", "status"}, names)
}
