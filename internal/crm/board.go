package crm

import (
	"context"
	"errors"

	"github.com/jomei/notionapi"
	"go.uber.org/zap"

	"github.com/octobees/leadscout/internal/entity"
	"github.com/octobees/leadscout/internal/metrics"
)

// ReasonScraped is written on every page so the sales team knows why the lead exists.
const ReasonScraped = "No website found - needs online presence"

// Board property names.
const (
	PropName          = "Name"
	PropPhone         = "Phone"
	PropEmail         = "Email"
	PropAddress       = "Address"
	PropWebsite       = "Website"
	PropWebsiteStatus = "Website Status"
	PropScore         = "Score"
	PropHotness       = "hotness"
	PropReason        = "Reason Scraped"
	PropStatus        = "Status"
	PropCity          = "city"
	PropRating        = "Rating"
	PropReviews       = "Reviews"
	PropNotes         = "Notes"

	statusNew = "New"
)

// ErrNotConfigured is returned when the board has no database id.
var ErrNotConfigured = errors.New("notion database id is not configured")

// PushResult counts pages created and skipped.
type PushResult struct {
	Created int `json:"created"`
	Failed  int `json:"failed"`
}

// Board writes leads into a Notion database, one page per lead.
type Board struct {
	client     Client
	databaseID string
	logger     *zap.Logger
}

// NewBoard binds a client to a database.
func NewBoard(client Client, databaseID string, logger *zap.Logger) *Board {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Board{client: client, databaseID: databaseID, logger: logger}
}

// Push creates a page for every lead. A failed page is logged and counted;
// only a cancelled context stops the loop early.
func (b *Board) Push(ctx context.Context, city string, leads []entity.Lead) (PushResult, error) {
	var result PushResult
	if b.databaseID == "" {
		return result, ErrNotConfigured
	}

	for _, lead := range leads {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		req := &notionapi.PageCreateRequest{
			Parent: notionapi.Parent{
				Type:       notionapi.ParentTypeDatabaseID,
				DatabaseID: notionapi.DatabaseID(b.databaseID),
			},
			Properties: pageProperties(lead, city),
		}
		if _, err := b.client.CreatePage(ctx, req); err != nil {
			result.Failed++
			metrics.CRMPushes.WithLabelValues("failed").Inc()
			b.logger.Warn("notion page create failed", zap.String("lead", lead.Name), zap.Error(err))
			continue
		}
		result.Created++
		metrics.CRMPushes.WithLabelValues("created").Inc()
	}

	b.logger.Info("notion push finished", zap.Int("created", result.Created), zap.Int("failed", result.Failed))
	return result, nil
}

func pageProperties(lead entity.Lead, city string) notionapi.Properties {
	status := lead.Verdict.Status
	if status == "" {
		status = entity.WebsiteNone
	}

	props := notionapi.Properties{
		PropName: notionapi.TitleProperty{
			Type:  notionapi.PropertyTypeTitle,
			Title: richText(lead.Name),
		},
		PropWebsiteStatus: notionapi.SelectProperty{
			Type:   notionapi.PropertyTypeSelect,
			Select: notionapi.Option{Name: status.Label()},
		},
		PropHotness: notionapi.SelectProperty{
			Type:   notionapi.PropertyTypeSelect,
			Select: notionapi.Option{Name: lead.Hotness.Label()},
		},
		PropScore: notionapi.NumberProperty{
			Type:   notionapi.PropertyTypeNumber,
			Number: float64(lead.Score),
		},
		PropReason: notionapi.RichTextProperty{
			Type:     notionapi.PropertyTypeRichText,
			RichText: richText(ReasonScraped),
		},
		PropStatus: notionapi.SelectProperty{
			Type:   notionapi.PropertyTypeSelect,
			Select: notionapi.Option{Name: statusNew},
		},
	}

	if phone := phoneForBoard(lead); phone != "" {
		props[PropPhone] = notionapi.PhoneNumberProperty{
			Type:        notionapi.PropertyTypePhoneNumber,
			PhoneNumber: phone,
		}
	}
	if lead.Email != nil && *lead.Email != "" {
		props[PropEmail] = notionapi.EmailProperty{
			Type:  notionapi.PropertyTypeEmail,
			Email: *lead.Email,
		}
	}
	if lead.Address != nil && *lead.Address != "" {
		props[PropAddress] = notionapi.RichTextProperty{
			Type:     notionapi.PropertyTypeRichText,
			RichText: richText(*lead.Address),
		}
	}
	if site := lead.WebsiteURL(); site != "" {
		props[PropWebsite] = notionapi.URLProperty{
			Type: notionapi.PropertyTypeURL,
			URL:  site,
		}
	}
	if city != "" {
		props[PropCity] = notionapi.RichTextProperty{
			Type:     notionapi.PropertyTypeRichText,
			RichText: richText(city),
		}
	}
	if lead.Rating != nil {
		props[PropRating] = notionapi.NumberProperty{
			Type:   notionapi.PropertyTypeNumber,
			Number: *lead.Rating,
		}
	}
	if lead.ReviewCount != nil {
		props[PropReviews] = notionapi.NumberProperty{
			Type:   notionapi.PropertyTypeNumber,
			Number: float64(*lead.ReviewCount),
		}
	}
	return props
}

func phoneForBoard(lead entity.Lead) string {
	if lead.PhoneE164 != "" {
		return lead.PhoneE164
	}
	if lead.Phone != nil {
		return *lead.Phone
	}
	return ""
}

func richText(content string) []notionapi.RichText {
	return []notionapi.RichText{{
		Type: notionapi.ObjectTypeText,
		Text: &notionapi.Text{Content: content},
	}}
}
