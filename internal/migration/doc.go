// Copyright (c) Medidash Authors.
// Licensed under the MIT License.

/*
包 migration 管理 user_roles 表的 Schema 版本，支持 PostgreSQL（Supabase）、
MySQL 与 SQLite，基于 golang-migrate 实现。

# 概述

各方言的 SQL 迁移文件通过 embed.FS 内嵌在二进制中。迁移 000001 建表并在
(user_id, role) 上建立唯一索引，000002 增加按 user_id 查询的索引。

# 核心类型

  - Migrator / DefaultMigrator：Up、Down、DownAll、Goto、Force、Version、
    Status、Info 操作。
  - CLI：`medidash migrate` 的终端输出层，Run 按子命令分发。
  - NewMigratorFromConfig / NewMigratorFromDatabaseConfig / NewMigratorFromURL：
    从应用配置或连接串创建迁移器。

SQLite 使用纯 Go 的 glebarez/go-sqlite 驱动打开连接，无需 CGO。
*/
package migration
