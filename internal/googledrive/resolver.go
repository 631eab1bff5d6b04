package googledrive

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/time/rate"
	"google.golang.org/api/drive/v3"

	"github.com/atelier-ops/projectflow/internal/logging"
)

// DefaultBrandSearchDepth caps the folder-tree traversal. Drive guarantees
// an acyclic tree, but the cap makes termination independent of that.
const DefaultBrandSearchDepth = 5

// childPageSize is the listing page size; only the first page is consulted.
const childPageSize = 1000

// BrandResolver locates a brand/client parent folder by depth-first search
// across one or more root folder trees.
type BrandResolver struct {
	svc      *drive.Service
	rootIDs  []string
	maxDepth int
	limiter  *rate.Limiter
}

// NewBrandResolver creates a resolver over the given root folder ids,
// searched in order. A nil limiter gets the package default.
func NewBrandResolver(svc *drive.Service, rootIDs []string, maxDepth int, limiter *rate.Limiter) *BrandResolver {
	if maxDepth <= 0 {
		maxDepth = DefaultBrandSearchDepth
	}
	if limiter == nil {
		limiter = NewDriveLimiter()
	}
	return &BrandResolver{
		svc:      svc,
		rootIDs:  rootIDs,
		maxDepth: maxDepth,
		limiter:  limiter,
	}
}

type searchFrame struct {
	id    string
	depth int
}

// FindParent returns the id of the first folder whose name contains
// brandName as a case-insensitive substring, searching each root tree
// depth-first in listing order. Returns "" when no tree contains a match.
func (r *BrandResolver) FindParent(ctx context.Context, brandName string) (string, error) {
	needle := strings.ToLower(strings.TrimSpace(brandName))
	if needle == "" {
		return "", nil
	}

	logger := logging.NewLogger(ctx)
	visited := make(map[string]bool)

	for _, root := range r.rootIDs {
		stack := []searchFrame{{id: root, depth: 0}}

		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if visited[cur.id] || cur.depth > r.maxDepth {
				continue
			}
			visited[cur.id] = true

			children, err := r.listChildFolders(ctx, cur.id)
			if err != nil {
				return "", fmt.Errorf("list children of %s: %w", cur.id, err)
			}

			for _, child := range children {
				if strings.Contains(strings.ToLower(child.Name), needle) {
					logger.LogInfof("brand_search", "matched folder %q (%s) for brand %q", child.Name, child.Id, brandName)
					return child.Id, nil
				}
			}

			// Push in reverse so the first listed child is explored first.
			for i := len(children) - 1; i >= 0; i-- {
				stack = append(stack, searchFrame{id: children[i].Id, depth: cur.depth + 1})
			}
		}
	}

	return "", nil
}

func (r *BrandResolver) listChildFolders(ctx context.Context, parentID string) ([]*drive.File, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := fmt.Sprintf("'%s' in parents and mimeType = '%s' and trashed = false", parentID, FolderMimeType)
	list, err := r.svc.Files.List().
		Q(q).
		PageSize(childPageSize).
		Fields("files(id, name)").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return list.Files, nil
}
