package engine

import (
	"errors"
	"sort"

	"quill/internal/domain/models"
)

// ErrFolderCycle reports that the flat folder collection contains a parent
// cycle and cannot form a tree.
var ErrFolderCycle = errors.New("folder hierarchy contains a cycle")

// BuildFolderTree assembles a flat folder collection into a nested tree.
// Pure function: the inputs are not mutated. Folders whose parent cannot be
// resolved are treated as roots; a parent cycle yields ErrFolderCycle
// instead of looping.
func BuildFolderTree(folders []models.Folder) ([]*models.FolderNode, error) {
	// First pass: create all nodes.
	nodeMap := make(map[string]*models.FolderNode, len(folders))
	for _, folder := range folders {
		nodeMap[folder.ID] = &models.FolderNode{
			ID:        folder.ID,
			Name:      folder.Name,
			ParentID:  folder.ParentID,
			Color:     folder.Color,
			CreatedAt: folder.CreatedAt,
			Children:  []*models.FolderNode{},
		}
	}

	// Second pass: nest children under parents. An absent parent makes the
	// folder a root; a folder naming itself as parent is a one-node cycle.
	var roots []*models.FolderNode
	for _, folder := range folders {
		node := nodeMap[folder.ID]
		if folder.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, exists := nodeMap[*folder.ParentID]
		if !exists {
			roots = append(roots, node)
			continue
		}
		if parent == node {
			return nil, ErrFolderCycle
		}
		parent.Children = append(parent.Children, node)
	}

	// Every node must be reachable from a root; nodes locked in a parent
	// cycle are not.
	reachable := 0
	queue := append([]*models.FolderNode{}, roots...)
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		reachable++
		queue = append(queue, node.Children...)
	}
	if reachable != len(nodeMap) {
		return nil, ErrFolderCycle
	}

	return roots, nil
}

// BuildSeriesOverview collects a series' member documents from the given
// collection, ordered by chapter number (unnumbered chapters last, ties
// broken by creation time), and sums their word counts. Pure function.
func BuildSeriesOverview(series models.Series, docs []models.Document) models.SeriesOverview {
	overview := models.SeriesOverview{
		Series:    series,
		Documents: []models.Document{},
	}

	for _, doc := range docs {
		if doc.SeriesID == nil || *doc.SeriesID != series.ID {
			continue
		}
		overview.Documents = append(overview.Documents, doc)
		overview.WordCount += doc.WordCount
	}

	sort.SliceStable(overview.Documents, func(i, j int) bool {
		a, b := overview.Documents[i], overview.Documents[j]
		switch {
		case a.ChapterNumber == nil && b.ChapterNumber == nil:
			return a.CreatedAt.Before(b.CreatedAt)
		case a.ChapterNumber == nil:
			return false
		case b.ChapterNumber == nil:
			return true
		default:
			return *a.ChapterNumber < *b.ChapterNumber
		}
	})

	return overview
}
