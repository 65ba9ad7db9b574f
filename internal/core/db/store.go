package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/solatis/renamer/internal/nbt"
	"github.com/solatis/renamer/internal/rules"
	"github.com/solatis/renamer/internal/types"
)

// Store persists rule packs. Each SavePack replaces the pack's rows inside
// one transaction, so readers never observe a half-written pack.
type Store struct {
	queries *Queries
	log     logrus.FieldLogger
}

// NewStore creates a store on top of loaded queries.
func NewStore(queries *Queries, log logrus.FieldLogger) *Store {
	return &Store{
		queries: queries,
		log:     log.WithField("component", "store"),
	}
}

type ruleRow struct {
	RuleID    string `db:"rule_id"`
	PackName  string `db:"pack_name"`
	Tier      string `db:"tier"`
	TypeID    int    `db:"type_id"`
	Low       int    `db:"low"`
	High      int    `db:"high"`
	Signature string `db:"signature"`
	Body      string `db:"body"`
}

// SavePack replaces every stored row of pack with its current content.
func (s *Store) SavePack(ctx context.Context, pack *rules.Pack) error {
	records := pack.Records()
	rows := make([]ruleRow, 0, len(records))
	for _, rec := range records {
		row, err := encodeRecord(pack.Name(), rec)
		if err != nil {
			return fmt.Errorf("pack %q: %w", pack.Name(), err)
		}
		rows = append(rows, row)
	}

	tx, err := s.queries.DB().BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	if _, err := s.queries.ExecTx(ctx, tx, "upsert-pack", pack.Name(), now); err != nil {
		return fmt.Errorf("failed to upsert pack %q: %w", pack.Name(), err)
	}
	if _, err := s.queries.ExecTx(ctx, tx, "delete-pack-rules", pack.Name()); err != nil {
		return fmt.Errorf("failed to clear pack %q: %w", pack.Name(), err)
	}
	for _, r := range rows {
		if _, err := s.queries.ExecTx(ctx, tx, "insert-rule",
			r.RuleID, r.PackName, r.Tier, r.TypeID, r.Low, r.High, r.Signature, r.Body, now); err != nil {
			return fmt.Errorf("failed to insert rule into pack %q: %w", pack.Name(), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit pack %q: %w", pack.Name(), err)
	}

	s.log.WithFields(logrus.Fields{"pack": pack.Name(), "rules": len(rows)}).Debug("saved pack")
	return nil
}

// SaveRegistry saves every pack of reg.
func (s *Store) SaveRegistry(ctx context.Context, reg *rules.Registry) error {
	for _, name := range reg.Names() {
		pack, err := reg.Get(name)
		if err != nil {
			return err
		}
		if err := s.SavePack(ctx, pack); err != nil {
			return err
		}
	}
	return nil
}

// LoadPacks rebuilds every stored pack into a new registry.
func (s *Store) LoadPacks(ctx context.Context, classifier types.ItemClassifier) (*rules.Registry, error) {
	reg := rules.NewRegistry(classifier)

	var names []string
	if err := s.queries.SelectContext(ctx, "list-packs", &names); err != nil {
		return nil, fmt.Errorf("failed to list packs: %w", err)
	}
	for _, name := range names {
		if _, err := reg.Create(name); err != nil {
			return nil, err
		}
	}

	var rows []ruleRow
	if err := s.queries.SelectContext(ctx, "list-rules", &rows); err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	for _, r := range rows {
		rec, err := decodeRecord(r)
		if err != nil {
			return nil, fmt.Errorf("rule %s in pack %q: %w", r.RuleID, r.PackName, err)
		}
		if err := reg.GetOrCreate(r.PackName).Apply(rec); err != nil {
			return nil, fmt.Errorf("rule %s in pack %q: %w", r.RuleID, r.PackName, err)
		}
	}

	s.log.WithFields(logrus.Fields{"packs": len(names), "rules": len(rows)}).Info("loaded rule packs")
	return reg, nil
}

// DeletePack removes a pack and its rules. Reports whether it existed.
func (s *Store) DeletePack(ctx context.Context, name string) (bool, error) {
	tx, err := s.queries.DB().BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.queries.ExecTx(ctx, tx, "delete-pack-rules", name); err != nil {
		return false, fmt.Errorf("failed to delete rules of pack %q: %w", name, err)
	}
	res, err := s.queries.ExecTx(ctx, tx, "delete-pack", name)
	if err != nil {
		return false, fmt.Errorf("failed to delete pack %q: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit delete of pack %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func encodeRecord(pack string, rec rules.Record) (ruleRow, error) {
	body, err := json.Marshal(rec.Rule.Document())
	if err != nil {
		return ruleRow{}, fmt.Errorf("encode rule: %w", err)
	}
	row := ruleRow{
		RuleID:   string(types.NewRuleID()),
		PackName: pack,
		Tier:     string(rec.Kind),
		TypeID:   rec.TypeID,
		Low:      rec.Low,
		High:     rec.High,
		Body:     string(body),
	}
	if rec.Kind == rules.KindExact && !rec.Extra.IsEmpty() {
		row.Signature = rec.Extra.Canonical()
	}
	return row, nil
}

func decodeRecord(r ruleRow) (rules.Record, error) {
	kind, err := rules.ParseRecordKind(r.Tier)
	if err != nil {
		return rules.Record{}, err
	}
	var doc rules.Document
	if err := json.Unmarshal([]byte(r.Body), &doc); err != nil {
		return rules.Record{}, fmt.Errorf("decode rule body: %w", err)
	}
	rule, err := doc.Rule()
	if err != nil {
		return rules.Record{}, err
	}
	rec := rules.Record{Kind: kind, TypeID: r.TypeID, Low: r.Low, High: r.High, Rule: rule}
	if r.Signature != "" {
		extra, err := nbt.ParseCanonical(r.Signature)
		if err != nil {
			return rules.Record{}, fmt.Errorf("decode signature: %w", err)
		}
		rec.Extra = extra
	}
	return rec, nil
}
