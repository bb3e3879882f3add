package commands

import (
	"strings"

	"github.com/spf13/cobra"
)

// completeModels completes non-abstract model names for commands taking
// models as arguments. Names already on the command line are not offered again.
func completeModels(e *env) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if err := e.setup(cmd, nil); err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		registry, err := e.registry()
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}

		taken := make(map[string]bool, len(args))
		for _, a := range args {
			taken[a] = true
		}

		var names []string
		for _, name := range registry.List() {
			m, _ := registry.Get(name)
			if m.Abstract || taken[name] || !strings.HasPrefix(name, toComplete) {
				continue
			}
			names = append(names, name)
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	}
}
