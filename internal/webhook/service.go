package webhook

import (
	"context"
	"fmt"

	"github.com/atelier-ops/projectflow/internal/logging"
	"github.com/atelier-ops/projectflow/internal/workspace"
)

// FolderProvisioner creates a project folder tree and returns its web URL.
// Implemented by googledrive.Provisioner.
type FolderProvisioner interface {
	CreateProjectFolder(ctx context.Context, name, brandName string) (string, error)
}

// Service runs the provisioning chain for one webhook event.
type Service struct {
	workspace       *workspace.Client
	sequencer       *workspace.Sequencer
	provisioner     FolderProvisioner
	guard           *IdempotencyGuard
	clientRelation  string
	clientNameProp  string
	templateBlockID string
}

// ServiceConfig wires the orchestrator's collaborators.
type ServiceConfig struct {
	Workspace       *workspace.Client
	Sequencer       *workspace.Sequencer
	Provisioner     FolderProvisioner
	Guard           *IdempotencyGuard
	ClientRelation  string // relation property naming the brand/client record
	ClientNameProp  string // title property on the related record
	TemplateBlockID string // optional; appended into the page body when set
}

// NewService creates the webhook orchestrator.
func NewService(cfg ServiceConfig) *Service {
	if cfg.ClientRelation == "" {
		cfg.ClientRelation = "Client"
	}
	if cfg.ClientNameProp == "" {
		cfg.ClientNameProp = "Name"
	}
	return &Service{
		workspace:       cfg.Workspace,
		sequencer:       cfg.Sequencer,
		provisioner:     cfg.Provisioner,
		guard:           cfg.Guard,
		clientRelation:  cfg.ClientRelation,
		clientNameProp:  cfg.ClientNameProp,
		templateBlockID: cfg.TemplateBlockID,
	}
}

// Provision runs the full chain for one record: compute and write the
// prefixed title, set the icon, provision the Drive folder tree, and write
// the folder URL back. A missing or placeholder title short-circuits with a
// skip message and no side effects. Writes already applied are not rolled
// back when a later step fails.
func (s *Service) Provision(ctx context.Context, recordID string) (string, error) {
	logger := logging.NewLogger(ctx)

	rawTitle, ready, err := s.workspace.GetTitle(ctx, recordID)
	if err != nil {
		return "", err
	}
	if !ready {
		logger.LogInfof("provision", "record %s title not ready, skipping", recordID)
		return "skipped: project title not ready", nil
	}

	prefix, err := s.sequencer.Prefix(ctx, recordID)
	if err != nil {
		return "", err
	}
	fullTitle := prefix + rawTitle

	if err := s.workspace.SetTitle(ctx, recordID, fullTitle); err != nil {
		return "", err
	}
	logger.LogInfof("provision", "record %s titled %q", recordID, fullTitle)

	if err := s.workspace.SetIcon(ctx, recordID, PickIcon(fullTitle)); err != nil {
		return "", err
	}

	brandName, _ := s.workspace.GetRelatedName(ctx, recordID, s.clientRelation, s.clientNameProp)

	if !s.guard.Acquire(ctx, recordID, fullTitle) {
		logger.LogInfof("provision", "record %s already provisioned as %q", recordID, fullTitle)
		return "already provisioned", nil
	}

	folderURL, err := s.provisioner.CreateProjectFolder(ctx, fullTitle, brandName)
	if err != nil {
		s.guard.Release(ctx, recordID, fullTitle)
		return "", err
	}

	if err := s.workspace.SetFolderURL(ctx, recordID, folderURL); err != nil {
		return "", err
	}

	if s.templateBlockID != "" {
		if err := s.workspace.AppendTemplateBlock(ctx, recordID, s.templateBlockID); err != nil {
			return "", err
		}
	}

	logger.LogInfof("provision", "record %s provisioned, folder %s", recordID, folderURL)
	return fmt.Sprintf("provisioned %q", fullTitle), nil
}
