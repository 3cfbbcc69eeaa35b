package sqlinline

// Counters back the usage gate for authenticated users. Expired rows are
// treated as absent and reset on the next increment.

const QIncrementCounter = `--sql 8d9008e9-2998-4810-862c-e67786e3bc53
insert into search_counters (key, count, expires_at)
values ($1::text, 1, $2::timestamptz)
on conflict (key) do update set
    count = case
        when search_counters.expires_at is not null and search_counters.expires_at <= now()
        then 1
        else search_counters.count + 1
    end,
    expires_at = case
        when search_counters.expires_at is not null and search_counters.expires_at <= now()
        then excluded.expires_at
        else search_counters.expires_at
    end
returning count;
`

const QSelectCounter = `--sql d017218a-ad76-4e12-9a14-a25142793631
select count
from search_counters
where key = $1::text
  and (expires_at is null or expires_at > now())
limit 1;
`

const QUpsertCounter = `--sql 7478bca8-ae19-4fc0-a0b4-3f629ed13f64
insert into search_counters (key, count, expires_at)
values ($1::text, $2::int, $3::timestamptz)
on conflict (key) do update set
    count = excluded.count,
    expires_at = excluded.expires_at;
`

const QDeleteCounter = `--sql 1c133178-5d52-4ebb-9dd0-48849531d224
delete from search_counters
where key = $1::text;
`

const QDeleteExpiredCounters = `--sql de18c2df-7a70-413e-816d-2d6b02eb2df6
delete from search_counters
where expires_at is not null and expires_at <= now();
`
