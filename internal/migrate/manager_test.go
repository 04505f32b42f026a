package migrate

import "testing"

func TestCollectSQLOrdersByName(t *testing.T) {
	files, err := collectSQL(Files, MigrationsDir, ".up.sql")
	if err != nil {
		t.Fatalf("collectSQL: %v", err)
	}
	if len(files) < 2 {
		t.Fatalf("expected at least two migrations, got %d", len(files))
	}
	for i := 1; i < len(files); i++ {
		if files[i-1].Base >= files[i].Base {
			t.Fatalf("migrations out of order: %s before %s", files[i-1].Base, files[i].Base)
		}
	}
	if files[0].Base != "0001_core.up.sql" {
		t.Fatalf("unexpected first migration: %s", files[0].Base)
	}
}

func TestEveryUpHasDown(t *testing.T) {
	ups, err := collectSQL(Files, MigrationsDir, ".up.sql")
	if err != nil {
		t.Fatal(err)
	}
	downs, err := collectSQL(Files, MigrationsDir, ".down.sql")
	if err != nil {
		t.Fatal(err)
	}
	if len(ups) != len(downs) {
		t.Fatalf("%d up migrations but %d down migrations", len(ups), len(downs))
	}
}

func TestSplitStatements(t *testing.T) {
	stmts := splitStatements(`create table a (id int); insert into a values ('x;y'); `)
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d: %q", len(stmts), stmts)
	}
	if stmts[1] != ` insert into a values ('x;y');` {
		t.Fatalf("quoted semicolon split: %q", stmts[1])
	}
}
