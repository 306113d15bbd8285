// Package resources reads the external "general resources" directory: one
// JSON file per course, keyed by file name. The directory is read-only
// content maintained outside the system.
package resources

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type Link struct {
	Name string `json:"name"`
	Link string `json:"link"`
}

type Course struct {
	CourseCode  string `json:"course_code"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Resources   []Link `json:"resources"`
}

// Load enumerates every .json file under dir. A missing directory yields an
// empty list, not an error; a malformed file is logged and skipped.
func Load(dir string) []Course {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Printf("⚠️ Resources directory not found at %q", dir)
		return nil
	}

	var courses []Course
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			log.Printf("⚠️ Could not read %s: %v", entry.Name(), err)
			continue
		}
		var course Course
		if err := json.Unmarshal(raw, &course); err != nil {
			log.Printf("⚠️ Could not parse %s, skipping: %v", entry.Name(), err)
			continue
		}
		course.CourseCode = strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		courses = append(courses, course)
	}

	sort.Slice(courses, func(i, j int) bool { return courses[i].CourseCode < courses[j].CourseCode })
	return courses
}
