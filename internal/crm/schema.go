package crm

import (
	"context"
	"fmt"
	"sort"

	"github.com/jomei/notionapi"
	"go.uber.org/zap"
)

func selectConfig(options ...notionapi.Option) notionapi.SelectPropertyConfig {
	return notionapi.SelectPropertyConfig{
		Type:   notionapi.PropertyConfigTypeSelect,
		Select: notionapi.Select{Options: options},
	}
}

func numberConfig() notionapi.NumberPropertyConfig {
	return notionapi.NumberPropertyConfig{
		Type:   notionapi.PropertyConfigTypeNumber,
		Number: notionapi.NumberFormat{Format: notionapi.FormatNumber},
	}
}

func richTextConfig() notionapi.RichTextPropertyConfig {
	return notionapi.RichTextPropertyConfig{Type: notionapi.PropertyConfigTypeRichText}
}

// requiredProperties is the column set the board writes to.
func requiredProperties() notionapi.PropertyConfigs {
	return notionapi.PropertyConfigs{
		PropPhone:   notionapi.PhoneNumberPropertyConfig{Type: notionapi.PropertyConfigTypePhoneNumber},
		PropEmail:   notionapi.EmailPropertyConfig{Type: notionapi.PropertyConfigTypeEmail},
		PropWebsite: notionapi.URLPropertyConfig{Type: notionapi.PropertyConfigTypeURL},
		PropAddress: richTextConfig(),
		PropScore:   numberConfig(),
		PropHotness: selectConfig(
			notionapi.Option{Name: "Premium", Color: notionapi.ColorYellow},
			notionapi.Option{Name: "Hot", Color: notionapi.ColorOrange},
			notionapi.Option{Name: "Warm", Color: notionapi.ColorBlue},
			notionapi.Option{Name: "Cool", Color: notionapi.ColorGray},
		),
		PropRating:  numberConfig(),
		PropReviews: numberConfig(),
		PropCity:    richTextConfig(),
		PropWebsiteStatus: selectConfig(
			notionapi.Option{Name: "None", Color: notionapi.ColorRed},
			notionapi.Option{Name: "Broken", Color: notionapi.ColorOrange},
			notionapi.Option{Name: "Placeholder", Color: notionapi.ColorYellow},
			notionapi.Option{Name: "Outdated", Color: notionapi.ColorPurple},
			notionapi.Option{Name: "Active", Color: notionapi.ColorGreen},
		),
		PropReason: richTextConfig(),
		PropStatus: selectConfig(
			notionapi.Option{Name: "New", Color: notionapi.ColorBlue},
			notionapi.Option{Name: "Contacted", Color: notionapi.ColorYellow},
			notionapi.Option{Name: "Responded", Color: notionapi.ColorOrange},
			notionapi.Option{Name: "Meeting", Color: notionapi.ColorPurple},
			notionapi.Option{Name: "Converted", Color: notionapi.ColorGreen},
			notionapi.Option{Name: "Lost", Color: notionapi.ColorRed},
		),
		PropNotes: richTextConfig(),
	}
}

// EnsureSchema adds any board columns the database is missing and returns their names.
// Existing columns are left untouched even when their type differs.
func (b *Board) EnsureSchema(ctx context.Context) ([]string, error) {
	if b.databaseID == "" {
		return nil, ErrNotConfigured
	}

	db, err := b.client.GetDatabase(ctx, b.databaseID)
	if err != nil {
		return nil, fmt.Errorf("load board schema: %w", err)
	}

	missing := notionapi.PropertyConfigs{}
	for name, cfg := range requiredProperties() {
		if _, ok := db.Properties[name]; ok {
			continue
		}
		missing[name] = cfg
	}
	if len(missing) == 0 {
		b.logger.Info("notion schema up to date")
		return nil, nil
	}

	if _, err := b.client.UpdateDatabase(ctx, b.databaseID, &notionapi.DatabaseUpdateRequest{Properties: missing}); err != nil {
		return nil, fmt.Errorf("add board columns: %w", err)
	}

	added := make([]string, 0, len(missing))
	for name := range missing {
		added = append(added, name)
	}
	sort.Strings(added)
	b.logger.Info("notion columns added", zap.Strings("columns", added))
	return added, nil
}
