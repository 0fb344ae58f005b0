package flatview

import (
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// MediaTypeCollection is the media type of collection buffers.
const MediaTypeCollection = "application/vnd.meigma.flatview.collection.v1+flatbuffers"

// Descriptor returns an OCI content descriptor for the buffer, suitable for
// publishing it as a blob.
func (idx *Index) Descriptor() ocispec.Descriptor {
	desc := ocispec.Descriptor{
		MediaType: MediaTypeCollection,
		Digest:    idx.Digest(),
		Size:      int64(len(idx.data)),
	}
	if name := idx.Name(); name != "" {
		desc.Annotations = map[string]string{
			ocispec.AnnotationTitle: name,
		}
	}
	return desc
}
