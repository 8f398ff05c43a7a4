// Package esmodel connects application models to Elasticsearch or
// OpenSearch: lazy searches whose hits hydrate back into records from the
// model's own storage, pagination, cross-model searches, bulk import and a
// plain-document repository.
//
// Models live in postgres (sqlx), mongo or redis, or in any source that can
// load records by id. The storage adapter is picked from the model source.
//
// # Searching a model
//
//	client, _ := esmodel.New(ctx, esmodel.WithElasticsearch("http://localhost:9200"),
//	    esmodel.WithPaginator(esmodel.Kaminari),
//	)
//	articles, _ := client.Register("Article", &esmodel.SQLTable{DB: db, Name: "articles"})
//
//	resp, _ := articles.Search(esmodel.NewQuery().Match("title", "fox"), esmodel.SearchOptions{})
//	resp.Page(2)
//	records, _ := resp.Records(ctx)
//	_ = records.EachWithHit(ctx, func(rec any, h esmodel.Hit) error { ... })
//
// # Importing
//
//	res, _ := articles.Import(ctx, esmodel.ImportOptions{Force: true, BatchSize: 500})
//	if err := res.Err(); err != nil { ... }
//
// # Repository
//
//	type Note struct {
//	    ID    string `json:"id"`
//	    Title string `json:"title"`
//	}
//
//	notes, _ := esmodel.NewRepository[Note](client, "notes")
//	id, _ := notes.Save(ctx, &Note{Title: "groceries"})
//	n, _ := notes.Find(ctx, id)
package esmodel
