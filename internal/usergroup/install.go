// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package usergroup

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/taibuivan/folio/internal/platform/events"
	"github.com/taibuivan/folio/internal/platform/validate"
	"github.com/taibuivan/folio/internal/role"
	"github.com/taibuivan/folio/internal/setting"
	"github.com/taibuivan/folio/internal/workflow"
	"github.com/taibuivan/folio/pkg/pointer"
	"github.com/taibuivan/folio/pkg/query"
	"github.com/taibuivan/folio/pkg/slice"
)

// # Definitions

// Definition describes one default group created by an install.
type Definition struct {
	RoleID    role.ID
	NameKey   string
	AbbrevKey string

	// Stages are raw stage ids; ids outside the five known stages are skipped at install.
	Stages []int
}

type definitionFile struct {
	XMLName xml.Name `xml:"user_groups"`
	Groups  []struct {
		RoleID string `xml:"roleId,attr"`
		Name   string `xml:"name,attr"`
		Abbrev string `xml:"abbrev,attr"`
		Stages string `xml:"stages,attr"`
	} `xml:"group"`
}

/*
ParseDefinitions reads a group definition document:

	<user_groups>
	  <group roleId="0x10" name="default.groups.name.manager" abbrev="default.groups.abbrev.manager" stages="1,3,4,5"/>
	</user_groups>

roleId is always hexadecimal; the 0x prefix is optional. Stage entries that are
not integers are skipped and logged, as are ids outside the five known stages at
install time.

Returns:
  - []Definition: One entry per group element, in document order
  - error: Malformed XML, unknown role ids, or a missing name key
*/
func ParseDefinitions(reader io.Reader) ([]Definition, error) {
	var file definitionFile
	if err := xml.NewDecoder(reader).Decode(&file); err != nil {
		return nil, fmt.Errorf("usergroup: parse definitions: %w", err)
	}

	definitions := make([]Definition, 0, len(file.Groups))
	for i, group := range file.Groups {
		roleID, err := role.ParseHex(group.RoleID)
		if err != nil {
			return nil, fmt.Errorf("usergroup: group %d: %w", i+1, err)
		}
		if strings.TrimSpace(group.Name) == "" {
			return nil, fmt.Errorf("usergroup: group %d: missing name key", i+1)
		}

		stages, rejected := query.IntList(group.Stages)
		for _, raw := range rejected {
			slog.Warn("user_group_stage_skipped", slog.Int("group", i+1), slog.String("stage", raw))
		}

		definitions = append(definitions, Definition{
			RoleID:    roleID,
			NameKey:   strings.TrimSpace(group.Name),
			AbbrevKey: strings.TrimSpace(group.Abbrev),
			Stages:    stages,
		})
	}

	return definitions, nil
}

// # Install

/*
InstallDefinitions creates the default groups of a context in one transaction.

Each group gets the role path, the default flag, its listed stages (ids outside
the five known stages are skipped and logged) and its name/abbrev translation
keys. The default locale is then seeded for every group of the context.

Parameters:
  - context: context.Context
  - contextID: int64
  - definitions: []Definition

Returns:
  - []*UserGroup: The created groups
  - error: Any failure; nothing is persisted in that case
*/
func (service *Service) InstallDefinitions(context context.Context, contextID int64, definitions []Definition) ([]*UserGroup, error) {
	validator := &validate.Validator{}
	validator.NonNegative(FieldContextID, contextID)
	validator.Locale(FieldLocale, service.defaultLocale)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	var installed []*UserGroup
	err := service.groups.WithTx(context, func(repo Repository) error {
		installed = make([]*UserGroup, 0, len(definitions))

		for _, definition := range definitions {
			group := &UserGroup{
				RoleID:    definition.RoleID,
				Path:      definition.RoleID.Path(),
				ContextID: contextID,
				IsDefault: true,
			}
			if err := repo.Insert(context, group); err != nil {
				return err
			}

			for _, id := range slice.Unique(definition.Stages) {
				stage := workflow.Stage(id)
				if !stage.Valid() {
					service.logger.Warn("stage_skipped",
						slog.Int64("user_group_id", group.ID),
						slog.Int("stage_id", id),
					)
					continue
				}
				if err := repo.AssignStage(context, contextID, group.ID, stage); err != nil {
					return err
				}
			}

			if err := repo.UpdateSetting(context, group.ID, SettingNameLocaleKey, setting.String(definition.NameKey)); err != nil {
				return err
			}
			if err := repo.UpdateSetting(context, group.ID, SettingAbbrevLocaleKey, setting.String(definition.AbbrevKey)); err != nil {
				return err
			}

			group.SetName(service.defaultLocale, service.translator.Translate(definition.NameKey, service.defaultLocale))
			group.SetAbbrev(service.defaultLocale, service.translator.Translate(definition.AbbrevKey, service.defaultLocale))
			installed = append(installed, group)
		}

		return service.installLocale(context, repo, service.defaultLocale, &contextID)
	})
	if err != nil {
		return nil, err
	}

	service.logger.Info("user_groups_installed",
		slog.Int64("context_id", contextID),
		slog.Int("count", len(installed)),
	)
	service.publish(context, events.Event{Type: events.DefinitionsInstalled, ContextID: &contextID, Locale: service.defaultLocale})

	return installed, nil
}

/*
InstallLocale resolves the stored name/abbrev translation keys of every group in
a context (all contexts when nil) and writes them for locale.

Only rows of locale are rewritten; other locales are untouched.
*/
func (service *Service) InstallLocale(context context.Context, locale string, contextID *int64) error {
	if err := (&validate.Validator{}).Locale(FieldLocale, locale).Err(); err != nil {
		return err
	}

	err := service.groups.WithTx(context, func(repo Repository) error {
		return service.installLocale(context, repo, locale, contextID)
	})
	if err != nil {
		return err
	}

	service.logger.Info("user_group_locale_installed",
		slog.String("locale", locale),
		slog.Int64("context_id", pointer.Val(contextID)),
	)
	service.publish(context, events.Event{Type: events.LocaleInstalled, ContextID: contextID, Locale: locale})

	return nil
}

var localeKeys = []struct{ field, key string }{
	{SettingName, SettingNameLocaleKey},
	{SettingAbbrev, SettingAbbrevLocaleKey},
}

func (service *Service) installLocale(context context.Context, repo Repository, locale string, contextID *int64) error {
	groups, err := repo.ListByContext(context, contextID)
	if err != nil {
		return err
	}

	for _, group := range groups {
		for _, pair := range localeKeys {
			key, ok := group.Settings.Get(pair.key, "")
			if !ok || key.Text() == "" {
				continue
			}

			text := service.translator.Translate(key.Text(), locale)
			if err := repo.UpdateLocalizedSetting(context, group.ID, pair.field, map[string]setting.Value{locale: setting.String(text)}); err != nil {
				return err
			}
		}
	}
	return nil
}
