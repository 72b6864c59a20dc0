// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// SettingTable describes any (entity id, name, locale, value, type) settings table.
type SettingTable struct {
	Table   string
	OwnerID string
	Name    string
	Value   string
	Type    string
	Locale  string
}

// UserGroupSetting is the schema definition for user_group_settings
var UserGroupSetting = SettingTable{
	Table:   "user_group_settings",
	OwnerID: "user_group_id",
	Name:    "setting_name",
	Value:   "setting_value",
	Type:    "setting_type",
	Locale:  "locale",
}

// UserSetting is the schema definition for user_settings
var UserSetting = SettingTable{
	Table:   "user_settings",
	OwnerID: "user_id",
	Name:    "setting_name",
	Value:   "setting_value",
	Type:    "setting_type",
	Locale:  "locale",
}

// ControlledVocabEntrySetting is the schema definition for controlled_vocab_entry_settings
var ControlledVocabEntrySetting = SettingTable{
	Table:   "controlled_vocab_entry_settings",
	OwnerID: "controlled_vocab_entry_id",
	Name:    "setting_name",
	Value:   "setting_value",
	Type:    "setting_type",
	Locale:  "locale",
}

// Columns returns the value columns in the order the settings store scans them.
func (t SettingTable) Columns() []string {
	return []string{t.Name, t.Value, t.Type, t.Locale}
}
