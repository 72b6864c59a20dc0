// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema names the tables and columns Folio's repositories query.
//
// Repositories interpolate these identifiers into SQL text with fmt.Sprintf.
// Only identifiers come from here; values are always bound parameters.
package schema
