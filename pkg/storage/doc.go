// Package storage manages the image output tree.
//
// Images live at <root>/<label>/<photo_id>.<extension>, one directory per
// label, created on demand. There is no manifest: an existing file at the
// destination means the image was already downloaded. Writes go through a
// temporary file and an atomic rename so that marker is never a partial file.
//
// Usage:
//
//	manager, err := storage.NewManager("original-inaturalist-data")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := manager.EnsureDir("ixodes scapularis"); err != nil {
//	    return err
//	}
//	exists, err := manager.Exists("ixodes scapularis", "12345", "jpg")
//	if err == nil && !exists {
//	    _, err = manager.Save(body, "ixodes scapularis", "12345", "jpg")
//	}
package storage
