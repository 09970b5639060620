package sqlinline

// QEnsureSchema is idempotent and runs at API startup.
const QEnsureSchema = `--sql 239d1d9a-0fde-44ac-b53b-768b1402e382
create table if not exists user_credits (
  user_id    text primary key,
  balance    int not null default 0 check (balance >= 0),
  updated_at timestamptz not null default now()
);
create table if not exists generations (
  id         uuid primary key,
  user_id    text not null,
  kind       text not null,
  model      text not null,
  document   jsonb not null default '{}'::jsonb,
  created_at timestamptz not null default now()
);
create index if not exists generations_user_created_idx on generations (user_id, created_at desc);
`
