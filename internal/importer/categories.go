package importer

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopfabrik/catalog-import/internal/catalog"
)

// CategoryRegistry resolves category name-paths against the persisted
// category tree and creates missing ones, including missing ancestors. One
// registry lives for exactly one import run.
//
// The index maps three spellings to a category id: the full name-path from
// the root category down, the same path minus its first segment, and the
// bare id. Import files may reference categories either way.
type CategoryRegistry struct {
	store    catalog.CategoryStore
	rootID   int64
	report   *Report
	onCreate func(*catalog.NewCategory)

	index  map[string]int64
	errors []string
}

// NewCategoryRegistry seeds a registry by walking the persisted category
// tree once. rootID is the category all created paths are nested under.
func NewCategoryRegistry(ctx context.Context, store catalog.CategoryStore, rootID int64, report *Report, onCreate func(*catalog.NewCategory)) (*CategoryRegistry, error) {
	nodes, err := store.CategoryTree(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load category tree: %w", err)
	}

	byID := make(map[int64]catalog.CategoryNode, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	index := make(map[string]int64)
	for _, n := range nodes {
		if n.ParentID == 0 {
			// root categories are addressed via the configured root id,
			// not by name
			continue
		}
		path := namePath(byID, n)
		if path == "" {
			continue
		}
		index[path] = n.ID
		if cut := strings.IndexByte(path, '/'); cut >= 0 {
			index[path[cut+1:]] = n.ID
		}
		index[strconv.FormatInt(n.ID, 10)] = n.ID
	}

	return &CategoryRegistry{
		store:    store,
		rootID:   rootID,
		report:   report,
		onCreate: onCreate,
		index:    index,
	}, nil
}

// namePath builds the slash-joined name path from the root category down to
// node, root category name included.
func namePath(byID map[int64]catalog.CategoryNode, node catalog.CategoryNode) string {
	var names []string
	for {
		names = append([]string{node.Name}, names...)
		if node.ParentID == 0 {
			break
		}
		parent, ok := byID[node.ParentID]
		if !ok {
			return ""
		}
		node = parent
	}
	return strings.Join(names, "/")
}

// ResolveOrCreate resolves the given name-path, creating the category and
// any missing ancestors. It returns false when the path could not be fully
// resolved; no partial index entry is recorded for the leaf in that case.
// The error list is reset on every call.
func (r *CategoryRegistry) ResolveOrCreate(ctx context.Context, path string) bool {
	r.errors = nil
	if _, ok := r.index[path]; ok {
		return true
	}
	return r.createRecursively(ctx, path) != 0
}

// Errors returns the messages collected by the most recent ResolveOrCreate
// call.
func (r *CategoryRegistry) Errors() []string {
	return r.errors
}

// ID returns the category id a name-path resolves to, if known.
func (r *CategoryRegistry) ID(path string) (int64, bool) {
	id, ok := r.index[path]
	return id, ok
}

func (r *CategoryRegistry) createRecursively(ctx context.Context, path string) int64 {
	if strings.TrimSpace(path) == "" {
		return 0
	}

	segments := strings.Split(path, "/")
	for _, segment := range segments {
		if segment == "" {
			r.errors = append(r.errors, fmt.Sprintf("Category [%s] can not have empty path parts.", path))
			return 0
		}
	}

	name := segments[len(segments)-1]
	parentSegments := segments[:len(segments)-1]
	parentPath := strings.Join(parentSegments, "/")

	if _, ok := r.index[parentPath]; !ok && parentPath != "" {
		if r.createRecursively(ctx, parentPath) == 0 {
			return 0
		}
	}

	// Rebuild the numeric id path of the ancestors.
	var parentIDs []int64
	prefix := ""
	for _, segment := range parentSegments {
		if id, ok := r.index[prefix+segment]; ok {
			parentIDs = append(parentIDs, id)
		} else {
			r.errors = append(r.errors, fmt.Sprintf("Category path does not have needed links %s  %s", prefix, segment))
		}
		prefix += segment + "/"
	}

	numericPath := fmt.Sprintf("1/%d", r.rootID)
	parentID := r.rootID
	if len(parentIDs) > 0 {
		ids := make([]string, len(parentIDs))
		for i, id := range parentIDs {
			ids[i] = strconv.FormatInt(id, 10)
		}
		numericPath += "/" + strings.Join(ids, "/")
		parentID = parentIDs[len(parentIDs)-1]
	}

	cat := &catalog.NewCategory{
		Name:        name,
		ParentID:    parentID,
		Path:        numericPath,
		IsActive:    true,
		DisplayMode: "PRODUCTS",
	}
	if r.onCreate != nil {
		r.onCreate(cat)
	}

	id, err := r.store.CreateCategory(ctx, cat)
	if err != nil {
		r.errors = append(r.errors, fmt.Sprintf("Category with name %s and path %s can not be saved.", name, numericPath))
		return 0
	}

	categoriesCreated.Inc()
	r.report.Notice(fmt.Sprintf("Created category %s", path))
	r.index[path] = id
	r.index[strconv.FormatInt(id, 10)] = id
	return id
}
