/*
Copyright © 2024 Ryan Painter paintersrp@gmail.com

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package tags

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/vaultlens/internal/hierarchy"
	"github.com/Paintersrp/vaultlens/internal/render"
	"github.com/Paintersrp/vaultlens/internal/state"
)

func NewCmdTags(s *state.State) *cobra.Command {
	var order string
	var limit int
	var plain bool

	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Count the notes under every tag path.",
		Long: `Lists every tag path of the vault, including intermediate prefixes, with
the number of distinct notes found anywhere beneath it.`,
		Example: "vaultlens tags --order asc --limit 20",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if s.Index == nil {
				return errors.New("vault is not open")
			}

			tree, err := s.Index.BuildTagHierarchy()
			if err != nil {
				return err
			}

			counts := CountTags(tree)
			if err := SortTagCounts(counts, order); err != nil {
				return err
			}
			if limit > 0 && len(counts) > limit {
				counts = counts[:limit]
			}

			return render.Auto(cmd.OutOrStdout(), plain).TagTable(counts)
		},
	}

	cmd.Flags().StringVarP(&order, "order", "o", "desc", "Sort order by count: asc or desc")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of rows (0 for all)")
	cmd.Flags().BoolVar(&plain, "plain", false, "Disable colors")

	return cmd
}

// CountTags returns one row per tag path. A note tagged under several
// branches of the same prefix counts once for that prefix.
func CountTags(tree *hierarchy.Tree) []render.TagCount {
	var counts []render.TagCount
	tree.Walk(func(n *hierarchy.Node) bool {
		if n.Path == hierarchy.UntaggedKey {
			return false
		}

		seen := make(map[string]struct{})
		n.Walk(func(child *hierarchy.Node) bool {
			for _, doc := range child.Documents {
				seen[doc.ID] = struct{}{}
			}
			return true
		})

		counts = append(counts, render.TagCount{Tag: n.Path, Count: len(seen)})
		return true
	})
	return counts
}

// SortTagCounts orders rows by count, breaking ties by tag path.
func SortTagCounts(counts []render.TagCount, order string) error {
	var less func(a, b int) bool
	switch order {
	case "asc":
		less = func(a, b int) bool { return a < b }
	case "desc", "":
		less = func(a, b int) bool { return a > b }
	default:
		return fmt.Errorf("invalid sort order %q: use asc or desc", order)
	}

	sort.SliceStable(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return less(counts[i].Count, counts[j].Count)
		}
		return counts[i].Tag < counts[j].Tag
	})
	return nil
}
