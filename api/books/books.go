package books

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"TallyBridge/api/books/journal"
	"TallyBridge/api/books/tally"
	"TallyBridge/api/middlewares"
	"TallyBridge/internal/config"
)

// ConnectorFromEnv builds the Tally connector client from the environment.
func ConnectorFromEnv() *tally.Client {
	url := os.Getenv("TALLY_CONNECTOR_URL")
	if url == "" {
		url = config.DefaultTallyConnectorURL
	}
	return tally.NewClient(url, config.ConnectorTimeoutSeconds*time.Second)
}

func StartBooksService(db *sql.DB, pgxPool *pgxpool.Pool) {
	client := ConnectorFromEnv()

	mux := http.NewServeMux()
	mux.Handle("/books/uploadJournal", middlewares.RequireOwnerCompany(journal.UploadJournal(pgxPool)))
	mux.Handle("/books/uploadJournalFile", middlewares.RequireOwnerCompany(journal.UploadJournalFile(pgxPool)))
	mux.HandleFunc("/books/getJournalData", journal.GetJournalData(db))
	mux.Handle("/books/updateJournalRow", middlewares.RequireOwnerCompany(journal.UpdateJournalRow(pgxPool)))
	mux.Handle("/books/getJournalUpdateHistory", middlewares.RequireOwnerCompany(journal.GetJournalUpdateHistory(db)))
	mux.Handle("/books/getUserUploads", middlewares.RequireOwnerCompany(journal.GetUserUploads(db)))
	mux.HandleFunc("/books/deleteUpload", journal.DeleteUserUpload(pgxPool))
	mux.HandleFunc("/books/getTallyTransactions", journal.GetSentCount(db))
	mux.HandleFunc("/books/sendToTally", tally.SendToTally(pgxPool, client))
	mux.HandleFunc("/books/checkTallyConnector", tally.CheckTallyConnector(client))

	log.Println("Books Service started on :6243")
	err := http.ListenAndServe(":6243", mux)
	if err != nil {
		log.Fatalf("Books Service failed: %v", err)
	}
}
