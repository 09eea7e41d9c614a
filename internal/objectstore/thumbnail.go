package objectstore

import (
	"fmt"
	"path"
)

// CollectionPrefix is the key prefix shared by every thumbnail of a collection.
func CollectionPrefix(collection string) string {
	return collection + "_"
}

// FileNamePrefix is the key prefix shared by every thumbnail of one file in a collection.
func FileNamePrefix(collection, fileName string) string {
	return CollectionPrefix(collection) + path.Base(fileName) + "_"
}

// ThumbnailID identifies the thumbnail cropped from page at the given bounding box.
func ThumbnailID(collection, fileName string, page int, x1, y1, x2, y2 float64) string {
	return fmt.Sprintf("%s%d_%g_%g_%g_%g", FileNamePrefix(collection, fileName), page, x1, y1, x2, y2)
}
