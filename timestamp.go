// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// timestamp.go encodes capture instants as decimal ID strings used for
// session and resource naming: the 17-digit YYYYMMDDHHMMSSmmm UTC form and
// the legacy 14-digit local-time form without milliseconds.

package scrapbook

import (
	"fmt"
	"time"
)

var (
	idDateMin = time.Date(0, time.January, 1, 0, 0, 0, 0, time.UTC)
	idDateMax = time.Date(9999, time.December, 31, 23, 59, 59, 999000000, time.UTC)
)

// DateToID encodes t as a 17-digit UTC millisecond-resolution ID. Dates
// outside the representable range clamp to 00000101000000000 /
// 99991231235959999.
func DateToID(t time.Time) string {
	t = t.UTC()
	if t.Before(idDateMin) {
		t = idDateMin
	} else if t.After(idDateMax) {
		t = idDateMax
	}
	return fmt.Sprintf("%04d%02d%02d%02d%02d%02d%03d",
		t.Year(), int(t.Month()), t.Day(),
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond()/1e6)
}

// IDToDate decodes a 17-digit ID back to its UTC instant. The second
// return value is false for anything that is not exactly 17 digits.
func IDToDate(id string) (time.Time, bool) {
	if len(id) != 17 || !allDigits(id) {
		return time.Time{}, false
	}
	return time.Date(
		atoiFixed(id[0:4]), time.Month(atoiFixed(id[4:6])), atoiFixed(id[6:8]),
		atoiFixed(id[8:10]), atoiFixed(id[10:12]), atoiFixed(id[12:14]),
		atoiFixed(id[14:17])*1e6, time.UTC,
	), true
}

// DateToIDLegacy encodes t as the legacy 14-digit local-time ID without
// milliseconds, with the same clamping rules as DateToID.
func DateToIDLegacy(t time.Time) string {
	t = t.Local()
	if t.Year() < 0 {
		t = time.Date(0, time.January, 1, 0, 0, 0, 0, time.Local)
	} else if t.Year() > 9999 {
		t = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.Local)
	}
	return fmt.Sprintf("%04d%02d%02d%02d%02d%02d",
		t.Year(), int(t.Month()), t.Day(),
		t.Hour(), t.Minute(), t.Second())
}

// IDToDateLegacy decodes a legacy 14-digit local-time ID. The second
// return value is false for anything that is not exactly 14 digits.
func IDToDateLegacy(id string) (time.Time, bool) {
	if len(id) != 14 || !allDigits(id) {
		return time.Time{}, false
	}
	return time.Date(
		atoiFixed(id[0:4]), time.Month(atoiFixed(id[4:6])), atoiFixed(id[6:8]),
		atoiFixed(id[8:10]), atoiFixed(id[10:12]), atoiFixed(id[12:14]),
		0, time.Local,
	), true
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func atoiFixed(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		n = n*10 + int(s[i]-'0')
	}
	return n
}
