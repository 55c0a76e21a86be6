// 轨迹输出：将车辆状态按步写入sqlite数据库
package output

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tsinghua-fib-lab/lmrs-sim-oss/entity"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id      TEXT PRIMARY KEY,
	started_at  TEXT NOT NULL,
	finished_at TEXT,
	config      TEXT NOT NULL,
	vehicles    INTEGER NOT NULL,
	steps       INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS trajectories (
	run_id     TEXT NOT NULL,
	step       INTEGER NOT NULL,
	t          REAL NOT NULL,
	vehicle_id INTEGER NOT NULL,
	lane       INTEGER NOT NULL,
	s          REAL NOT NULL,
	v          REAL NOT NULL,
	a          REAL NOT NULL,
	lane_change INTEGER NOT NULL,
	PRIMARY KEY (run_id, step, vehicle_id),
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);
`

// Row 一辆车在一步中的输出记录
type Row struct {
	Step       int32
	T          float64
	VehicleID  int32
	Lane       int
	S          float64
	V          float64
	A          float64
	LaneChange int
}

// Writer 轨迹写入器
// 功能：一次仿真对应runs表中的一条记录，按输出间隔写入trajectories表
type Writer struct {
	db       *sql.DB
	runID    string
	interval int32
	steps    int32
}

// Open 打开（或创建）sqlite数据库并登记一次仿真
// 参数：path-数据库路径，interval-输出间隔（步），config-本次仿真的配置文本，vehicles-车辆数
// 返回：写入器，数据库无法打开或建表失败时返回错误
func Open(path string, interval int32, config string, vehicles int) (*Writer, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("output interval must be positive, got %d", interval)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// sqlite只允许一个写连接
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON", "PRAGMA synchronous=NORMAL"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	w := &Writer{db: db, runID: uuid.NewString(), interval: interval}
	if _, err := db.Exec(
		`INSERT INTO runs (run_id, started_at, config, vehicles) VALUES (?, ?, ?, ?)`,
		w.runID, time.Now().UTC().Format(time.RFC3339), config, vehicles,
	); err != nil {
		db.Close()
		return nil, fmt.Errorf("insert run: %w", err)
	}
	log.Infof("output to %s, run_id=%s", path, w.runID)
	return w, nil
}

// RunID 本次仿真的ID
func (w *Writer) RunID() string {
	return w.runID
}

// Write 写入一步的车辆快照
// 说明：step不是输出间隔的整数倍时不写入；一步的所有记录在同一事务中提交
func (w *Writer) Write(ctx context.Context, step int32, t float64, snapshots []*entity.VehicleSnapshot) error {
	if step%w.interval != 0 {
		return nil
	}
	return w.write(ctx, step, t, snapshots)
}

// WriteFinal 写入仿真结束时的车辆快照，不受输出间隔限制
func (w *Writer) WriteFinal(ctx context.Context, step int32, t float64, snapshots []*entity.VehicleSnapshot) error {
	return w.write(ctx, step, t, snapshots)
}

func (w *Writer) write(ctx context.Context, step int32, t float64, snapshots []*entity.VehicleSnapshot) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO trajectories (run_id, step, t, vehicle_id, lane, s, v, a, lane_change) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()
	for _, s := range snapshots {
		if _, err := stmt.ExecContext(ctx, w.runID, step, t, s.ID, s.Lane, s.S, s.V, s.A, s.LaneChange); err != nil {
			return fmt.Errorf("insert vehicle %d at step %d: %w", s.ID, step, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	w.steps++
	return nil
}

// Trajectory 读取本次仿真中一辆车的全部记录，按步排序
func (w *Writer) Trajectory(ctx context.Context, vehicleID int32) ([]Row, error) {
	rows, err := w.db.QueryContext(ctx,
		`SELECT step, t, vehicle_id, lane, s, v, a, lane_change FROM trajectories WHERE run_id = ? AND vehicle_id = ? ORDER BY step`,
		w.runID, vehicleID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()
	var result []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.Step, &r.T, &r.VehicleID, &r.Lane, &r.S, &r.V, &r.A, &r.LaneChange); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// Close 记录仿真结束时间与输出步数并关闭数据库
func (w *Writer) Close() error {
	if _, err := w.db.Exec(
		`UPDATE runs SET finished_at = ?, steps = ? WHERE run_id = ?`,
		time.Now().UTC().Format(time.RFC3339), w.steps, w.runID,
	); err != nil {
		w.db.Close()
		return fmt.Errorf("finish run: %w", err)
	}
	return w.db.Close()
}
