// internal/service/brand_service.go
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/spaceshq/spaces-backend/internal/model"
	"github.com/spaceshq/spaces-backend/internal/repository"
)

type BrandService struct {
	BrandRepo   repository.BrandRepositoryInterface
	SnippetRepo repository.SnippetRepositoryInterface
	Completer   ChatCompleter
}

// GetProfile returns the space's profile, or an empty one when none exists yet.
func (s *BrandService) GetProfile(spaceID int) (*model.BrandProfile, error) {
	bp, err := s.BrandRepo.GetBySpace(spaceID)
	if err != nil {
		return nil, err
	}
	if bp == nil {
		return &model.BrandProfile{SpaceID: spaceID}, nil
	}
	return bp, nil
}

func (s *BrandService) UpsertProfile(bp *model.BrandProfile) error {
	return s.BrandRepo.Upsert(bp)
}

// GenerateProfile drafts the free-text brand fields from website snippets via
// one completion call, keeping any logo configuration already saved.
func (s *BrandService) GenerateProfile(spaceID int) (*model.BrandProfile, error) {
	snippets, err := s.SnippetRepo.ListBySource(spaceID, model.SnippetSourceWebsite, maxWebsiteSnippets)
	if err != nil {
		return nil, err
	}
	if len(snippets) == 0 {
		return nil, fmt.Errorf("no website content available for space %d, crawl the website first", spaceID)
	}

	texts := make([]string, 0, len(snippets))
	for _, sn := range snippets {
		texts = append(texts, capText(sn.Content, contextSourceCap))
	}

	system := "You summarise company websites into brand profiles. " +
		"Respond with exactly three sections labelled WHO WE ARE:, TONE:, and AUDIENCE:."
	user := "Website content:\n" + strings.Join(texts, "\n---\n")

	raw, err := s.Completer.Complete(context.Background(), system, user)
	if err != nil {
		return nil, err
	}

	sections := parseLabelledSections(raw)

	existing, err := s.BrandRepo.GetBySpace(spaceID)
	if err != nil {
		return nil, err
	}

	bp := &model.BrandProfile{SpaceID: spaceID}
	if existing != nil {
		bp.LogoURL = existing.LogoURL
		bp.LogoPosition = existing.LogoPosition
	}
	bp.WhoWeAre = sections["WHO WE ARE"]
	bp.ToneNotes = sections["TONE"]
	bp.Audience = sections["AUDIENCE"]

	if err := s.BrandRepo.Upsert(bp); err != nil {
		return nil, err
	}
	return bp, nil
}

// parseLabelledSections splits "LABEL: text" blocks out of a completion.
func parseLabelledSections(raw string) map[string]string {
	labels := []string{"WHO WE ARE", "TONE", "AUDIENCE"}
	sections := map[string]string{}

	current := ""
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		matched := false
		for _, label := range labels {
			if strings.HasPrefix(strings.ToUpper(trimmed), label+":") {
				current = label
				rest := strings.TrimSpace(trimmed[len(label)+1:])
				sections[label] = rest
				matched = true
				break
			}
		}
		if matched || current == "" {
			continue
		}
		if trimmed != "" {
			if sections[current] != "" {
				sections[current] += " "
			}
			sections[current] += trimmed
		}
	}
	return sections
}
