/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"reportstudio/internal/domain"
)

const (
	ManifestFileName = "report.json"
	BackupsDirName   = "backups"
)

// Standard subfolders of a report project directory.
var standardSubDirs = []string{
	"exports",
	"assets",
	BackupsDirName,
}

// ReportHandle tracks a report project loaded from or saved to disk.
// Root is the project directory containing report.json and subfolders.
type ReportHandle struct {
	Root         string
	ManifestPath string
	Report       domain.Report
}

// InitReport creates a new project directory at root (creating it if it
// doesn't exist), scaffolds the standard subfolders, and writes the given
// manifest transactionally.
func InitReport(root string, r domain.Report) (*ReportHandle, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("root path is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create project root: %w", err)
	}
	for _, d := range standardSubDirs {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			return nil, fmt.Errorf("create subdir %s: %w", d, err)
		}
	}

	rh := &ReportHandle{
		Root:         root,
		ManifestPath: filepath.Join(root, ManifestFileName),
		Report:       r,
	}
	if err := Save(rh); err != nil {
		return nil, err
	}
	return rh, nil
}

// Open loads an existing report project from the given root directory.
// If the current manifest cannot be read or parsed, it falls back to the
// latest timestamped backup.
func Open(root string) (*ReportHandle, error) {
	mpath := filepath.Join(root, ManifestFileName)
	b, err := os.ReadFile(mpath)
	if err != nil {
		r, berr := openFromLatestBackup(root)
		if berr != nil {
			return nil, fmt.Errorf("open manifest: %w; backup attempt: %v", err, berr)
		}
		return &ReportHandle{Root: root, ManifestPath: mpath, Report: *r}, nil
	}
	if verr := domain.ValidateManifest(b); verr != nil {
		rec, berr := openFromLatestBackup(root)
		if berr != nil {
			return nil, fmt.Errorf("validate manifest: %w; backup attempt: %v", verr, berr)
		}
		return &ReportHandle{Root: root, ManifestPath: mpath, Report: *rec}, nil
	}
	var r domain.Report
	if uerr := json.Unmarshal(b, &r); uerr != nil {
		rec, berr := openFromLatestBackup(root)
		if berr != nil {
			return nil, fmt.Errorf("parse manifest: %w; backup attempt: %v", uerr, berr)
		}
		return &ReportHandle{Root: root, ManifestPath: mpath, Report: *rec}, nil
	}
	return &ReportHandle{Root: root, ManifestPath: mpath, Report: r}, nil
}

// Save writes the current ReportHandle.Report to disk with transactional
// semantics and a timestamped backup of the previous manifest (if present).
func Save(rh *ReportHandle) error {
	if rh == nil {
		return errors.New("nil ReportHandle")
	}
	if rh.Root == "" || rh.ManifestPath == "" {
		return errors.New("invalid ReportHandle: missing paths")
	}
	for _, c := range rh.Report.Components {
		if err := domain.Validate(c); err != nil {
			return fmt.Errorf("validate report: %w", err)
		}
	}
	data, err := json.MarshalIndent(rh.Report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	data = append(data, '\n')

	bdir := filepath.Join(rh.Root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}

	// Copy the current manifest to a timestamped backup before replacing.
	if _, statErr := os.Stat(rh.ManifestPath); statErr == nil {
		stamp := time.Now().Format("20060102-150405")
		bname := fmt.Sprintf("%s.%s.bak", ManifestFileName, stamp)
		bpath := filepath.Join(bdir, bname)
		if cerr := copyFile(rh.ManifestPath, bpath); cerr != nil {
			return fmt.Errorf("backup current manifest: %w", cerr)
		}
	}

	// Transactional write: temp file in the same directory, rename over target.
	dir := filepath.Dir(rh.ManifestPath)
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", ManifestFileName, os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		return fmt.Errorf("write temp manifest: %w", werr)
	}
	// On Windows, replace by removing the destination first if needed.
	if _, err := os.Stat(rh.ManifestPath); err == nil {
		_ = os.Remove(rh.ManifestPath)
	}
	if rerr := os.Rename(temp, rh.ManifestPath); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace manifest: %w", rerr)
	}
	return nil
}

// SaveAs writes the manifest to a new root folder, scaffolding structure if
// needed, and updates the handle.
func SaveAs(rh *ReportHandle, newRoot string) error {
	if rh == nil {
		return errors.New("nil ReportHandle")
	}
	if newRoot == "" {
		return errors.New("new root is empty")
	}
	if err := os.MkdirAll(newRoot, 0o755); err != nil {
		return fmt.Errorf("create new root: %w", err)
	}
	for _, d := range standardSubDirs {
		if err := os.MkdirAll(filepath.Join(newRoot, d), 0o755); err != nil {
			return fmt.Errorf("create subdir %s: %w", d, err)
		}
	}
	rh.Root = newRoot
	rh.ManifestPath = filepath.Join(newRoot, ManifestFileName)
	return Save(rh)
}

// AutosaveCrashSnapshot writes the in-memory report to a crash-stamped file
// under the backups folder, bypassing validation: a crashing process must be
// able to dump whatever state it holds. Returns the snapshot path.
func AutosaveCrashSnapshot(rh *ReportHandle) (string, error) {
	if rh == nil || rh.Root == "" {
		return "", errors.New("invalid ReportHandle")
	}
	bdir := filepath.Join(rh.Root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return "", fmt.Errorf("ensure backups dir: %w", err)
	}
	data, err := json.MarshalIndent(rh.Report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(bdir, fmt.Sprintf("crash-%s.json", stamp))
	if err := writeFileSync(path, append(data, '\n')); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// writeFileSync writes data to a file and flushes it to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return err
	}
	return nil
}

// copyFile copies a file from src to dst (overwrites dst if exists).
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	if err := df.Sync(); err != nil {
		return err
	}
	return nil
}

// openFromLatestBackup tries to open the latest timestamped backup.
func openFromLatestBackup(root string) (*domain.Report, error) {
	bdir := filepath.Join(root, BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	var candidates []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, ManifestFileName+".") && strings.HasSuffix(name, ".bak") {
			candidates = append(candidates, filepath.Join(bdir, name))
		}
	}
	if len(candidates) == 0 {
		return nil, errors.New("no backups found")
	}
	sort.Strings(candidates) // timestamp in name yields lexicographic order
	latest := candidates[len(candidates)-1]
	b, err := os.ReadFile(latest)
	if err != nil {
		return nil, fmt.Errorf("read latest backup: %w", err)
	}
	var r domain.Report
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("parse latest backup: %w", err)
	}
	return &r, nil
}
