package silver

import (
	"fmt"
	"sort"
)

// buildHostTables splits host attributes out of the cleaned rows into
// silver.host_details (one row per host, slow-changing identity) and
// silver.host_activity (one row per host per listing per period,
// behavioural attributes that move between scrapes).
func (b *Builder) buildHostTables(cleaned []CleanedListingPeriod, dims *Dimensions) error {
	if err := b.buildHostDetails(cleaned); err != nil {
		return err
	}
	return b.buildHostActivity(cleaned, dims)
}

func (b *Builder) buildHostDetails(cleaned []CleanedListingPeriod) error {
	_, err := b.db.Exec(`
		CREATE TABLE silver.host_details (
			host_id bigint NOT NULL,
			host_name varchar(100),
			host_since date
		)`)
	if err != nil {
		return fmt.Errorf("failed to create silver.host_details (reset required before rerun): %w", err)
	}

	// One row per host, first occurrence wins. Hosts without an id
	// cannot be modelled and are skipped.
	type hostRow struct {
		id int64
		c  CleanedListingPeriod
	}
	seen := make(map[int64]bool)
	var hosts []hostRow
	for _, c := range cleaned {
		if c.HostID == 0 || seen[c.HostID] {
			continue
		}
		seen[c.HostID] = true
		hosts = append(hosts, hostRow{id: c.HostID, c: c})
	}
	sort.Slice(hosts, func(i, j int) bool { return hosts[i].id < hosts[j].id })

	stmt, err := b.db.Prepare(`INSERT INTO silver.host_details (host_id, host_name, host_since) VALUES ($1, $2, $3)`)
	if err != nil {
		return fmt.Errorf("failed to prepare host_details insert: %w", err)
	}
	defer stmt.Close()

	for _, h := range hosts {
		var name interface{}
		if h.c.HostName != "" {
			name = h.c.HostName
		}
		var since interface{}
		if h.c.HostSince != nil {
			since = *h.c.HostSince
		}
		if _, err := stmt.Exec(h.id, name, since); err != nil {
			return fmt.Errorf("failed to insert host %d: %w", h.id, err)
		}
	}

	if _, err := b.db.Exec(`ALTER TABLE silver.host_details ADD CONSTRAINT pk_host PRIMARY KEY (host_id)`); err != nil {
		return fmt.Errorf("failed to key silver.host_details: %w", err)
	}

	b.log.Info("host details loaded", "hosts", len(hosts))
	return nil
}

func (b *Builder) buildHostActivity(cleaned []CleanedListingPeriod, dims *Dimensions) error {
	_, err := b.db.Exec(`
		CREATE TABLE silver.host_activity (
			host_id bigint NOT NULL,
			date_id smallint NOT NULL,
			listing_id bigint NOT NULL,
			host_about text,
			host_picture_url text,
			host_is_superhost varchar(10) NOT NULL,
			host_identity_verified varchar(10),
			host_response_time varchar(50) NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("failed to create silver.host_activity (reset required before rerun): %w", err)
	}

	stmt, err := b.db.Prepare(`
		INSERT INTO silver.host_activity
			(host_id, date_id, listing_id, host_about, host_picture_url,
			 host_is_superhost, host_identity_verified, host_response_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`)
	if err != nil {
		return fmt.Errorf("failed to prepare host_activity insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, c := range cleaned {
		if c.HostID == 0 {
			continue
		}
		dateID, ok := dims.DateID[c.Period]
		if !ok {
			return fmt.Errorf("period %q missing from date dimension", c.Period)
		}

		var about interface{}
		if c.HostAbout != "" {
			about = c.HostAbout
		}
		var picture interface{}
		if c.HostPictureURL != "" {
			picture = c.HostPictureURL
		}
		var identity interface{}
		if c.HostIdentityVerified != nil {
			identity = *c.HostIdentityVerified
		}

		if _, err := stmt.Exec(c.HostID, dateID, c.ID, about, picture,
			c.HostSuperhost, identity, c.HostResponseTime); err != nil {
			return fmt.Errorf("failed to insert host activity for host %d: %w", c.HostID, err)
		}
		inserted++
	}

	_, err = b.db.Exec(`
		ALTER TABLE silver.host_activity
		ADD CONSTRAINT fk_activity_host FOREIGN KEY (host_id) REFERENCES silver.host_details (host_id),
		ADD CONSTRAINT fk_activity_date FOREIGN KEY (date_id) REFERENCES silver.dates (date_id)`)
	if err != nil {
		return fmt.Errorf("failed to key silver.host_activity: %w", err)
	}
	if _, err := b.db.Exec(`CREATE INDEX idx_host_activity_host ON silver.host_activity (host_id)`); err != nil {
		return fmt.Errorf("failed to index silver.host_activity: %w", err)
	}
	if _, err := b.db.Exec(`CREATE INDEX idx_host_activity_listing ON silver.host_activity (listing_id)`); err != nil {
		return fmt.Errorf("failed to index silver.host_activity: %w", err)
	}

	b.log.Info("host activity loaded", "rows", inserted)
	return nil
}
