package firestore

import "github.com/m-mizutani/fireconf"

// Indexes returns the composite indexes the repository queries need.
// Chunks are ranked in process, so no vector index is declared.
func Indexes(prefix string) *fireconf.Config {
	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				Name: prefix + ContentsCollection,
				Indexes: []fireconf.Index{
					// contentRepository.ListByMentor
					{
						Fields: []fireconf.IndexField{
							{Path: "MentorID", Order: fireconf.OrderAscending},
							{Path: "CreatedAt", Order: fireconf.OrderDescending},
						},
					},
				},
			},
			{
				Name: prefix + ChunksCollection,
				Indexes: []fireconf.Index{
					// chunkRepository.ListByContent
					{
						Fields: []fireconf.IndexField{
							{Path: "ContentID", Order: fireconf.OrderAscending},
							{Path: "ChunkIndex", Order: fireconf.OrderAscending},
						},
					},
				},
			},
			{
				Name: prefix + ConversationsCollection,
				Indexes: []fireconf.Index{
					// conversationRepository.ListByMentor
					{
						Fields: []fireconf.IndexField{
							{Path: "MentorID", Order: fireconf.OrderAscending},
							{Path: "UpdatedAt", Order: fireconf.OrderDescending},
						},
					},
				},
			},
		},
	}
}
