package googledrive

import (
	"context"
	"fmt"
	"regexp"

	"golang.org/x/time/rate"
	"google.golang.org/api/drive/v3"

	"github.com/atelier-ops/projectflow/internal/logging"
)

// FolderMimeType is the Drive mime type for folders.
const FolderMimeType = "application/vnd.google-apps.folder"

// projectPrefixRe matches the zero-padded sequence prefix at the start of a
// project folder name, e.g. "007_".
var projectPrefixRe = regexp.MustCompile(`^\d{3}_`)

// subfolderLabels is the fixed subfolder set created under numbered projects.
var subfolderLabels = []string{"Files", "Assets", "Deliverables"}

// Provisioner creates project folder trees in Drive.
type Provisioner struct {
	svc          *drive.Service
	rootFolderID string
	resolver     *BrandResolver
	limiter      *rate.Limiter
}

// NewProvisioner creates a provisioner. resolver may be nil, in which case
// every folder lands under the default root. A nil limiter gets the package
// default.
func NewProvisioner(svc *drive.Service, rootFolderID string, resolver *BrandResolver, limiter *rate.Limiter) *Provisioner {
	if limiter == nil {
		limiter = NewDriveLimiter()
	}
	return &Provisioner{
		svc:          svc,
		rootFolderID: rootFolderID,
		resolver:     resolver,
		limiter:      limiter,
	}
}

// CreateProjectFolder creates a folder named name under the brand parent
// when one is found, otherwise under the default root. When name starts with
// a project-number prefix, the fixed subfolder set is created under it; each
// subfolder failure is logged and skipped. Returns the folder's web URL.
func (p *Provisioner) CreateProjectFolder(ctx context.Context, name, brandName string) (string, error) {
	logger := logging.NewLogger(ctx)

	parentID := p.rootFolderID
	if brandName != "" && p.resolver != nil {
		match, err := p.resolver.FindParent(ctx, brandName)
		switch {
		case err != nil:
			// Best effort: a failed brand search falls back to the root.
			logger.LogError("brand_search", err)
		case match != "":
			parentID = match
		}
	}

	folder, err := p.createFolder(ctx, name, parentID)
	if err != nil {
		return "", fmt.Errorf("create folder %q: %w", name, err)
	}
	logger.LogInfof("create_folder", "created folder %q (%s)", folder.Name, folder.Id)

	p.createSubfolders(ctx, folder.Id, name)

	return FolderURL(folder), nil
}

func (p *Provisioner) createSubfolders(ctx context.Context, parentID, name string) {
	logger := logging.NewLogger(ctx)

	prefix := projectPrefixRe.FindString(name)
	if prefix == "" {
		logger.LogWarnf("create_subfolders", "folder name %q has no project-number prefix, skipping subfolders", name)
		return
	}

	for _, label := range subfolderLabels {
		subName := prefix + label
		sub, err := p.createFolder(ctx, subName, parentID)
		if err != nil {
			logger.LogErrorf("create_subfolders", "subfolder %q failed: %v", subName, err)
			continue
		}
		logger.LogInfof("create_subfolders", "created subfolder %q (%s)", sub.Name, sub.Id)
	}
}

func (p *Provisioner) createFolder(ctx context.Context, name, parentID string) (*drive.File, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	return p.svc.Files.Create(&drive.File{
		Name:     name,
		MimeType: FolderMimeType,
		Parents:  []string{parentID},
	}).Fields("id", "name", "webViewLink").Context(ctx).Do()
}

// FolderURL returns the folder's web URL, falling back to the canonical
// folder link when the API response carries no webViewLink.
func FolderURL(f *drive.File) string {
	if f.WebViewLink != "" {
		return f.WebViewLink
	}
	return "https://drive.google.com/drive/folders/" + f.Id
}
